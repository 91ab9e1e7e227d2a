package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicore/scheduler/internal/config"
	"github.com/clinicore/scheduler/internal/service"
	"github.com/clinicore/scheduler/pkg/metrics"
)

type RouterConfig struct {
	BookingSvc *service.BookingService
	PatientSvc *service.PatientService
	DoctorSvc  *service.DoctorService
	DB         *gorm.DB
	Redis      *redis.Client
	Metrics    *metrics.Collector
	Log        *zap.Logger
	App        config.AppConfig
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(RequestLogger(cfg.Log))
	r.Use(Recovery(cfg.Log))
	r.Use(Tracing(cfg.App.Name))
	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics))
	}

	health := NewHealthHandler(cfg.DB, cfg.Redis, cfg.App.Environment, cfg.App.Version)
	r.GET("/health/live", health.Liveness)
	r.GET("/health/ready", health.Readiness)
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	appointments := NewAppointmentHandler(cfg.BookingSvc)
	patients := NewPatientHandler(cfg.PatientSvc)
	doctors := NewDoctorHandler(cfg.DoctorSvc)

	api := r.Group("/api/v1")
	{
		api.GET("/appointments/availability", appointments.CheckAvailability)
		api.POST("/appointments", appointments.Create)
		api.GET("/appointments", appointments.List)
		api.GET("/appointments/:id", appointments.Get)
		api.PATCH("/appointments/:id", appointments.Update)
		api.PUT("/appointments/:id/status", appointments.UpdateStatus)
		api.POST("/appointments/:id/cancel", appointments.Cancel)
		api.DELETE("/appointments/:id", appointments.Delete)

		api.POST("/patients", patients.Create)
		api.GET("/patients", patients.List)
		api.GET("/patients/:id", patients.Get)
		api.PATCH("/patients/:id", patients.Update)
		api.DELETE("/patients/:id", patients.Deactivate)

		api.POST("/doctors", doctors.Create)
		api.GET("/doctors", doctors.List)
		api.GET("/doctors/:id", doctors.Get)
	}

	return r
}
