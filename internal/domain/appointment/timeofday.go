package appointment

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a minute-resolution time of day, stored as minutes since
// midnight. The wire and storage format is "HH:MM" (24-hour, zero-padded).
type TimeOfDay int

const minutesPerDay = 24 * 60

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidStartTime
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses a strict "HH:MM" string. "HH:MM:SS" is accepted too
// because Postgres TIME columns render seconds; anything else is rejected.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if len(s) == 8 && s[5] == ':' && isDigit(s[6]) && isDigit(s[7]) {
		if sec := int(s[6]-'0')*10 + int(s[7]-'0'); sec > 59 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
		}
		s = s[:5]
	}
	if len(s) != 5 || s[2] != ':' ||
		!isDigit(s[0]) || !isDigit(s[1]) || !isDigit(s[3]) || !isDigit(s[4]) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	t, err := NewTimeOfDay(hour, minute)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return t, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedTime, data)
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer so gorm can store the time in a TIME column.
func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, ErrInvalidStartTime
	}
	return fmt.Sprintf("%02d:%02d:00", t.Hour(), t.Minute()), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		return t.Scan(string(v))
	case time.Time:
		*t = TimeOfDay(v.Hour()*60 + v.Minute())
		return nil
	default:
		return fmt.Errorf("%w: cannot scan %T into TimeOfDay", ErrMalformedTime, src)
	}
}
