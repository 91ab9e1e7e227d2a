package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func makeAppointment(t *testing.T, doctorID uuid.UUID, date, start string, duration int, status Status) Appointment {
	t.Helper()
	return Appointment{
		ID:           uuid.New(),
		DoctorID:     doctorID,
		PatientID:    uuid.New(),
		Date:         mustDate(t, date),
		StartTime:    mustTime(t, start),
		DurationMins: duration,
		Status:       status,
	}
}

func TestCheckConflict_Overlaps(t *testing.T) {
	doctorID := uuid.New()
	date := "2025-03-10"
	pool := []Appointment{
		makeAppointment(t, doctorID, date, "09:00", 60, StatusScheduled),
	}

	tests := []struct {
		name     string
		start    string
		duration int
		want     bool
	}{
		{"partial overlap from the left", "08:30", 45, true},
		{"partial overlap from the right", "09:45", 30, true},
		{"candidate contained in existing", "09:15", 30, true},
		{"candidate contains existing", "08:30", 120, true},
		{"identical interval", "09:00", 60, true},
		{"adjacent before does not conflict", "08:00", 60, false},
		{"adjacent after does not conflict", "10:00", 30, false},
		{"well before", "07:00", 30, false},
		{"well after", "11:00", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cand := Candidate{
				DoctorID:     doctorID,
				Date:         mustDate(t, date),
				StartTime:    mustTime(t, tt.start),
				DurationMins: tt.duration,
			}
			res, err := CheckConflict(cand, pool, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.HasConflict)
			if tt.want {
				require.NotNil(t, res.ConflictingID)
				assert.Equal(t, pool[0].ID, *res.ConflictingID)
				require.NotNil(t, res.ConflictStart)
				assert.Equal(t, "09:00", res.ConflictStart.String())
			} else {
				assert.Nil(t, res.ConflictingID)
				assert.Nil(t, res.ConflictStart)
			}
		})
	}
}

func TestCheckConflict_OverlapIsSymmetric(t *testing.T) {
	doctorID := uuid.New()
	date := "2025-03-10"

	intervals := []struct {
		start    string
		duration int
	}{
		{"09:00", 30},
		{"09:15", 30},
		{"09:30", 30},
		{"08:00", 180},
	}

	for i := range intervals {
		for j := range intervals {
			if i == j {
				continue
			}
			a, b := intervals[i], intervals[j]

			pool := []Appointment{makeAppointment(t, doctorID, date, b.start, b.duration, StatusScheduled)}
			cand := Candidate{
				DoctorID:     doctorID,
				Date:         mustDate(t, date),
				StartTime:    mustTime(t, a.start),
				DurationMins: a.duration,
			}
			resAB, err := CheckConflict(cand, pool, nil)
			require.NoError(t, err)

			pool = []Appointment{makeAppointment(t, doctorID, date, a.start, a.duration, StatusScheduled)}
			cand = Candidate{
				DoctorID:     doctorID,
				Date:         mustDate(t, date),
				StartTime:    mustTime(t, b.start),
				DurationMins: b.duration,
			}
			resBA, err := CheckConflict(cand, pool, nil)
			require.NoError(t, err)

			assert.Equal(t, resAB.HasConflict, resBA.HasConflict,
				"overlap(%s+%dm, %s+%dm) must be symmetric", a.start, a.duration, b.start, b.duration)
		}
	}
}

func TestCheckConflict_NoSelfConflictWhenEditing(t *testing.T) {
	doctorID := uuid.New()
	existing := makeAppointment(t, doctorID, "2025-03-10", "09:00", 30, StatusScheduled)

	cand := Candidate{
		DoctorID:     doctorID,
		Date:         existing.Date,
		StartTime:    existing.StartTime,
		DurationMins: existing.DurationMins,
	}

	// Without the exclusion the unchanged time collides with itself.
	res, err := CheckConflict(cand, []Appointment{existing}, nil)
	require.NoError(t, err)
	assert.True(t, res.HasConflict)

	id := existing.ID
	res, err = CheckConflict(cand, []Appointment{existing}, &id)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckConflict_CancelledNeverConflicts(t *testing.T) {
	doctorID := uuid.New()
	pool := []Appointment{
		makeAppointment(t, doctorID, "2025-03-10", "09:00", 60, StatusCancelled),
	}

	cand := Candidate{
		DoctorID:     doctorID,
		Date:         mustDate(t, "2025-03-10"),
		StartTime:    mustTime(t, "09:00"),
		DurationMins: 60,
	}
	res, err := CheckConflict(cand, pool, nil)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
}

func TestCheckConflict_FiltersDoctorAndDate(t *testing.T) {
	doctorID := uuid.New()
	cand := Candidate{
		DoctorID:     doctorID,
		Date:         mustDate(t, "2025-03-10"),
		StartTime:    mustTime(t, "09:00"),
		DurationMins: 30,
	}

	t.Run("different doctor never conflicts", func(t *testing.T) {
		pool := []Appointment{
			makeAppointment(t, uuid.New(), "2025-03-10", "09:00", 30, StatusScheduled),
		}
		res, err := CheckConflict(cand, pool, nil)
		require.NoError(t, err)
		assert.False(t, res.HasConflict)
	})

	t.Run("different date never conflicts", func(t *testing.T) {
		pool := []Appointment{
			makeAppointment(t, doctorID, "2025-03-11", "09:00", 30, StatusScheduled),
		}
		res, err := CheckConflict(cand, pool, nil)
		require.NoError(t, err)
		assert.False(t, res.HasConflict)
	})
}

func TestCheckConflict_InvalidCandidateRejected(t *testing.T) {
	doctorID := uuid.New()
	base := Candidate{
		DoctorID:     doctorID,
		Date:         mustDate(t, "2025-03-10"),
		StartTime:    mustTime(t, "09:00"),
		DurationMins: 30,
	}

	tests := []struct {
		name    string
		mutate  func(c Candidate) Candidate
		wantErr error
	}{
		{"zero duration", func(c Candidate) Candidate { c.DurationMins = 0; return c }, ErrInvalidDuration},
		{"negative duration", func(c Candidate) Candidate { c.DurationMins = -15; return c }, ErrInvalidDuration},
		{"missing doctor", func(c Candidate) Candidate { c.DoctorID = uuid.Nil; return c }, ErrMissingDoctor},
		{"missing date", func(c Candidate) Candidate { c.Date = Date{}; return c }, ErrMissingDate},
		{"start out of range", func(c Candidate) Candidate { c.StartTime = TimeOfDay(minutesPerDay); return c }, ErrInvalidStartTime},
		{"negative start", func(c Candidate) Candidate { c.StartTime = TimeOfDay(-1); return c }, ErrInvalidStartTime},
		{"crosses midnight", func(c Candidate) Candidate {
			c.StartTime = mustTime(t, "23:30")
			c.DurationMins = 45
			return c
		}, ErrCrossesMidnight},
	}

	pool := []Appointment{makeAppointment(t, doctorID, "2025-03-10", "09:00", 30, StatusScheduled)}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckConflict(tt.mutate(base), pool, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckConflict_EndToEndScenario(t *testing.T) {
	doctorID := uuid.New()
	date := "2025-03-10"
	pool := []Appointment{
		makeAppointment(t, doctorID, date, "09:00", 30, StatusScheduled),
		makeAppointment(t, doctorID, date, "10:00", 20, StatusConfirmed),
		makeAppointment(t, doctorID, date, "09:30", 30, StatusCancelled),
	}

	t.Run("09:20 for 15 minutes collides with the 09:00 slot", func(t *testing.T) {
		cand := Candidate{
			DoctorID:     doctorID,
			Date:         mustDate(t, date),
			StartTime:    mustTime(t, "09:20"),
			DurationMins: 15,
		}
		res, err := CheckConflict(cand, pool, nil)
		require.NoError(t, err)
		require.True(t, res.HasConflict)
		assert.Equal(t, pool[0].ID, *res.ConflictingID)
		assert.Equal(t, "09:00", res.ConflictStart.String())
	})

	t.Run("09:30 for 25 minutes is clear", func(t *testing.T) {
		cand := Candidate{
			DoctorID:     doctorID,
			Date:         mustDate(t, date),
			StartTime:    mustTime(t, "09:30"),
			DurationMins: 25,
		}
		res, err := CheckConflict(cand, pool, nil)
		require.NoError(t, err)
		assert.False(t, res.HasConflict)
	})
}

func TestCheckConflict_FirstHitWins(t *testing.T) {
	doctorID := uuid.New()
	date := "2025-03-10"
	first := makeAppointment(t, doctorID, date, "09:00", 60, StatusScheduled)
	second := makeAppointment(t, doctorID, date, "09:30", 60, StatusScheduled)

	cand := Candidate{
		DoctorID:     doctorID,
		Date:         mustDate(t, date),
		StartTime:    mustTime(t, "09:30"),
		DurationMins: 30,
	}
	res, err := CheckConflict(cand, []Appointment{first, second}, nil)
	require.NoError(t, err)
	require.True(t, res.HasConflict)
	assert.Equal(t, first.ID, *res.ConflictingID)
}

func TestAppointment_EndMinutes(t *testing.T) {
	a := makeAppointment(t, uuid.New(), "2025-03-10", "09:00", 30, StatusScheduled)
	assert.Equal(t, 9*60, a.StartMinutes())
	assert.Equal(t, 9*60+30, a.EndMinutes())
	assert.Equal(t, time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC), a.EndsAt())
}
