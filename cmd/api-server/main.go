package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinicore/scheduler/internal/config"
	v1 "github.com/clinicore/scheduler/internal/handler/v1"
	"github.com/clinicore/scheduler/internal/repository"
	"github.com/clinicore/scheduler/internal/service"
	"github.com/clinicore/scheduler/pkg/database"
	"github.com/clinicore/scheduler/pkg/logger"
	"github.com/clinicore/scheduler/pkg/metrics"
	"github.com/clinicore/scheduler/pkg/redislock"
	"github.com/clinicore/scheduler/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("config load error: " + err.Error())
	}

	log, err := logger.New(cfg.Log, "api-server")
	if err != nil {
		panic("logger init error: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("api-server starting",
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
		zap.String("addr", cfg.Server.Address()),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			log.Fatal("tracer init error", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown error", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("postgres connection error", zap.Error(err))
	}
	if err := database.Migrate(db, log); err != nil {
		log.Fatal("migration error", zap.Error(err))
	}
	log.Info("connected to postgres", zap.String("database", cfg.Database.Name))

	// Booking degrades to lock-free when Redis is unreachable; the conflict
	// check inside the request still runs either way.
	var (
		rdb    *redis.Client
		locker redislock.Locker = redislock.NopLocker{}
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redislock.NewClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password)
		if err != nil {
			log.Warn("redis unavailable, booking locks disabled", zap.Error(err))
			rdb = nil
		} else {
			locker = redislock.NewDoctorDayLocker(rdb, cfg.Scheduling.BookingLockTTL)
			defer func() { _ = rdb.Close() }()
			log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	m := metrics.NewCollector("scheduler")
	if sqlDB, err := db.DB(); err == nil {
		m.StartDBStatsCollector(sqlDB)
	}

	appointmentRepo := repository.NewAppointmentRepository(db, m)
	patientRepo := repository.NewPatientRepository(db, m)
	doctorRepo := repository.NewDoctorRepository(db, m)
	auditRepo := repository.NewAuditRepository(db, m)

	auditSvc := service.NewAuditService(auditRepo, m, log)
	defer auditSvc.Shutdown()

	bookingSvc := service.NewBookingService(appointmentRepo, patientRepo, doctorRepo, locker, auditSvc, m, log, cfg.Scheduling)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, m, log)
	doctorSvc := service.NewDoctorService(doctorRepo, auditSvc, log)

	router := v1.NewRouter(v1.RouterConfig{
		BookingSvc: bookingSvc,
		PatientSvc: patientSvc,
		DoctorSvc:  doctorSvc,
		DB:         db,
		Redis:      rdb,
		Metrics:    m,
		Log:        log,
		App:        cfg.App,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	log.Info("api-server listening", zap.String("addr", srv.Addr))

	<-rootCtx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("api-server stopped")
}
