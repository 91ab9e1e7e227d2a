package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clinicore/scheduler/internal/config"
	"github.com/clinicore/scheduler/internal/repository"
	"github.com/clinicore/scheduler/internal/service"
	"github.com/clinicore/scheduler/pkg/database"
	"github.com/clinicore/scheduler/pkg/logger"
	"github.com/clinicore/scheduler/pkg/metrics"
	"github.com/clinicore/scheduler/pkg/redislock"
)

// The worker flips confirmed appointments whose slot ended past the grace
// period to no_show. One process per deployment is enough; the transition
// table makes a concurrent duplicate sweep a no-op.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	log, err := logger.New(cfg.Log, "noshow-worker")
	if err != nil {
		panic("logger init error: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("noshow-worker starting",
		zap.String("env", cfg.App.Environment),
		zap.Duration("interval", cfg.Scheduling.WorkerInterval),
		zap.Duration("grace", cfg.Scheduling.NoShowGrace),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	log.Info("connected to postgres", zap.String("database", cfg.Database.Name))

	m := metrics.NewCollector("scheduler_worker")

	appointmentRepo := repository.NewAppointmentRepository(db, m)
	patientRepo := repository.NewPatientRepository(db, m)
	doctorRepo := repository.NewDoctorRepository(db, m)
	auditRepo := repository.NewAuditRepository(db, m)

	auditSvc := service.NewAuditService(auditRepo, m, log)
	defer auditSvc.Shutdown()

	svc := service.NewBookingService(appointmentRepo, patientRepo, doctorRepo, redislock.NopLocker{}, auditSvc, m, log, cfg.Scheduling)

	runOnce(rootCtx, svc, log)

	ticker := time.NewTicker(cfg.Scheduling.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info("shutdown signal received, stopping noshow-worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, svc, log)
		}
	}
}

func runOnce(ctx context.Context, svc *service.BookingService, log *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	start := time.Now()
	swept, err := svc.SweepNoShows(runCtx, time.Now())
	if err != nil {
		log.Error("no-show sweep failed", zap.Error(err))
		return
	}
	log.Info("no-show sweep complete",
		zap.Int("swept", swept),
		zap.Duration("took", time.Since(start)),
	)
}
