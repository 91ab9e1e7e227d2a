package main

import (
	"flag"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicore/scheduler/internal/config"
	"github.com/clinicore/scheduler/internal/domain/appointment"
	"github.com/clinicore/scheduler/internal/domain/doctor"
	"github.com/clinicore/scheduler/internal/domain/patient"
	"github.com/clinicore/scheduler/pkg/database"
	"github.com/clinicore/scheduler/pkg/logger"
)

var specializations = []string{
	"General Practice",
	"Cardiology",
	"Dermatology",
	"Pediatrics",
	"Orthopedics",
	"Neurology",
	"Endocrinology",
	"Psychiatry",
}

func main() {
	doctorCount := flag.Int("doctors", 8, "number of doctors to seed")
	patientCount := flag.Int("patients", 200, "number of patients to seed")
	days := flag.Int("days", 14, "number of days of appointments to seed")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	log, err := logger.New(cfg.Log, "seed")
	if err != nil {
		panic("logger init error: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("migration error", zap.Error(err))
	}

	gofakeit.Seed(time.Now().UnixNano())

	doctors := seedDoctors(db, log, *doctorCount)
	patients := seedPatients(db, log, *patientCount)
	seedAppointments(db, log, doctors, patients, *days)

	log.Info("seed complete")
}

func seedDoctors(db *gorm.DB, log *zap.Logger, count int) []doctor.Doctor {
	log.Info("seeding doctors", zap.Int("count", count))

	doctors := make([]doctor.Doctor, 0, count)
	for i := 0; i < count; i++ {
		d := doctor.Doctor{
			FullName:       "Dr. " + gofakeit.Name(),
			Specialization: specializations[i%len(specializations)],
			Active:         true,
		}
		if err := db.Create(&d).Error; err != nil {
			log.Fatal("seed doctor failed", zap.Error(err))
		}
		doctors = append(doctors, d)
	}
	return doctors
}

func seedPatients(db *gorm.DB, log *zap.Logger, count int) []patient.Patient {
	log.Info("seeding patients", zap.Int("count", count))

	patients := make([]patient.Patient, 0, count)
	for i := 0; i < count; i++ {
		dob := gofakeit.DateRange(
			time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC),
		)
		p := patient.Patient{
			FirstName:   gofakeit.FirstName(),
			LastName:    gofakeit.LastName(),
			DateOfBirth: &dob,
			Phone:       gofakeit.Phone(),
			Email:       gofakeit.Email(),
			Status:      patient.StatusActive,
		}
		if err := db.Create(&p).Error; err != nil {
			log.Fatal("seed patient failed", zap.Error(err))
		}
		patients = append(patients, p)
	}
	return patients
}

// seedAppointments fills each doctor's mornings with back-to-back slots.
// Slots are laid out sequentially so the seeded data never violates the
// no-overlap invariant.
func seedAppointments(db *gorm.DB, log *zap.Logger, doctors []doctor.Doctor, patients []patient.Patient, days int) {
	log.Info("seeding appointments", zap.Int("days", days))

	durations := []int{15, 20, 30, 45, 60}
	start := time.Now().UTC()

	total := 0
	for day := 0; day < days; day++ {
		date := appointment.DateOf(start.AddDate(0, 0, day))
		for _, d := range doctors {
			cursor := 9 * 60 // 09:00
			slots := gofakeit.Number(3, 8)
			for s := 0; s < slots && cursor < 17*60; s++ {
				dur := durations[gofakeit.Number(0, len(durations)-1)]
				p := patients[gofakeit.Number(0, len(patients)-1)]

				a := appointment.Appointment{
					ID:           uuid.New(),
					PatientID:    p.ID,
					DoctorID:     d.ID,
					Date:         date,
					StartTime:    appointment.TimeOfDay(cursor),
					DurationMins: dur,
					Status:       appointment.StatusScheduled,
				}
				if err := db.Create(&a).Error; err != nil {
					log.Fatal("seed appointment failed", zap.Error(err))
				}

				// Leave an occasional gap so availability queries have
				// something to find.
				cursor += dur
				if gofakeit.Bool() {
					cursor += 15
				}
				total++
			}
		}
	}

	log.Info("appointments seeded", zap.Int("total", total))
}
