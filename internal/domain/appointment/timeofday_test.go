package appointment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    int // minutes since midnight, -1 for error
		wantErr error
	}{
		{"00:00", 0, nil},
		{"09:05", 9*60 + 5, nil},
		{"23:59", 23*60 + 59, nil},
		{"09:05:00", 9*60 + 5, nil}, // Postgres TIME renders seconds
		{"09:05:59", 9*60 + 5, nil},
		{"09:05:60", -1, ErrMalformedTime},
		{"09:05.30", -1, ErrMalformedTime},
		{"24:00", -1, ErrMalformedTime},
		{"12:60", -1, ErrMalformedTime},
		{"9:05", -1, ErrMalformedTime}, // must be zero-padded
		{"09.05", -1, ErrMalformedTime},
		{"09:05:61", -1, ErrMalformedTime},
		{"", -1, ErrMalformedTime},
		{"garbage", -1, ErrMalformedTime},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Minutes())
		})
	}
}

func TestTimeOfDay_RoundTrip(t *testing.T) {
	tod, err := NewTimeOfDay(9, 30)
	require.NoError(t, err)
	assert.Equal(t, "09:30", tod.String())

	data, err := json.Marshal(tod)
	require.NoError(t, err)
	assert.JSONEq(t, `"09:30"`, string(data))

	var back TimeOfDay
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tod, back)
}

func TestTimeOfDay_Scan(t *testing.T) {
	var tod TimeOfDay

	require.NoError(t, tod.Scan("14:45:00"))
	assert.Equal(t, "14:45", tod.String())

	require.NoError(t, tod.Scan(time.Date(2025, 3, 10, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, "08:15", tod.String())

	assert.Error(t, tod.Scan(42))
}

func TestNewTimeOfDay_Bounds(t *testing.T) {
	_, err := NewTimeOfDay(24, 0)
	assert.ErrorIs(t, err, ErrInvalidStartTime)
	_, err = NewTimeOfDay(-1, 0)
	assert.ErrorIs(t, err, ErrInvalidStartTime)
	_, err = NewTimeOfDay(0, 60)
	assert.ErrorIs(t, err, ErrInvalidStartTime)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", d.String())
	assert.Equal(t, 2025, d.Year)
	assert.Equal(t, time.March, d.Month)
	assert.Equal(t, 10, d.Day)

	for _, in := range []string{"2025-3-10", "10.03.2025", "2025-03-10T00:00:00Z", ""} {
		_, err := ParseDate(in)
		assert.ErrorIs(t, err, ErrMalformedDate, "input %q", in)
	}
}

func TestDate_Equal(t *testing.T) {
	a, _ := ParseDate("2025-03-10")
	b := DateOf(time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC))
	c, _ := ParseDate("2025-03-11")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.True(t, a.Before(c))
	assert.False(t, a.IsZero())
	assert.True(t, Date{}.IsZero())
}
