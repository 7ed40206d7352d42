package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-agenda/internal/audit"
	"github.com/BruksfildServices01/barber-agenda/internal/cache"
	"github.com/BruksfildServices01/barber-agenda/internal/config"
	"github.com/BruksfildServices01/barber-agenda/internal/handlers"
	infraRepo "github.com/BruksfildServices01/barber-agenda/internal/infra/repository"
	"github.com/BruksfildServices01/barber-agenda/internal/logging"
	"github.com/BruksfildServices01/barber-agenda/internal/metrics"
	"github.com/BruksfildServices01/barber-agenda/internal/middleware"
	"github.com/BruksfildServices01/barber-agenda/internal/permissions"
	ucAppointment "github.com/BruksfildServices01/barber-agenda/internal/usecase/appointment"
)

// Infra carries the process-wide collaborators built in main.
type Infra struct {
	Logger   *logging.Logger
	Cache    cache.Cache
	Limiter  middleware.Limiter
	Metrics  *metrics.BookingMetrics
	Gatherer prometheus.Gatherer
	Audit    *audit.Dispatcher
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(infra.Logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if infra.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	rt := &ucAppointment.Runtime{
		Cache:              infra.Cache,
		Metrics:            infra.Metrics,
		Logger:             infra.Logger,
		SlotStep:           time.Duration(cfg.SlotStepMinutes) * time.Minute,
		DefaultDuration:    time.Duration(cfg.DefaultDurationMinutes) * time.Minute,
		NoShowBlocks:       cfg.NoShowBlocksSlot,
		BookingHorizonDays: cfg.BookingHorizonDays,
		CacheTTL:           cfg.CacheTTL,
	}

	// ======================================================
	// USE CASES - APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, infra.Audit, rt)
	getAvailabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, rt)
	updateStatusUC := ucAppointment.NewUpdateAppointmentStatus(appointmentRepo, infra.Audit, rt)
	completeAppointmentUC := ucAppointment.NewCompleteAppointment(appointmentRepo, infra.Audit, rt)
	cancelAppointmentUC := ucAppointment.NewCancelAppointment(appointmentRepo, infra.Audit, rt)
	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(appointmentRepo)
	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(appointmentRepo)
	listClientAppointmentsUC := ucAppointment.NewListClientAppointments(appointmentRepo)

	availabilityCache := ucAppointment.NewAvailabilityCache(rt)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	shopHandler := handlers.NewShopHandler(db, availabilityCache)
	businessHoursHandler := handlers.NewBusinessHoursHandler(db, infra.Audit, availabilityCache)
	timeOffHandler := handlers.NewTimeOffHandler(db, infra.Audit, availabilityCache)
	serviceHandler := handlers.NewServiceHandler(db, availabilityCache)
	professionalHandler := handlers.NewProfessionalHandler(db, availabilityCache)
	clientHandler := handlers.NewClientHandler(db, listClientAppointmentsUC)
	memberHandler := handlers.NewMemberHandler(db, infra.Audit)
	dashboardHandler := handlers.NewDashboardHandler(db, infra.Logger)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		getAvailabilityUC,
		updateStatusUC,
		completeAppointmentUC,
		cancelAppointmentUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	publicHandler := handlers.NewPublicHandler(db, appointmentRepo, cfg, getAvailabilityUC, createAppointmentUC)

	clientAreaHandler := handlers.NewClientAreaHandler(
		listClientAppointmentsUC,
		createAppointmentUC,
		cancelAppointmentUC,
	)

	can := middleware.RequireCapability

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public/:slug")
		{
			publicAPI.GET("", publicHandler.GetShop)
			publicAPI.GET("/services", publicHandler.ListServices)
			publicAPI.GET("/professionals", publicHandler.ListProfessionals)
			publicAPI.GET("/availability", publicHandler.Availability)

			limited := publicAPI.Group("")
			if infra.Limiter != nil {
				limited.Use(middleware.RateLimit(infra.Limiter, infra.Logger))
			}
			limited.POST("/appointments", publicHandler.CreateAppointment)
			limited.POST("/clients/register", publicHandler.RegisterClient)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/shop", can(permissions.ViewAgenda), shopHandler.Get)
			secured.PATCH("/me/shop", can(permissions.ManageShop), shopHandler.Update)

			secured.GET("/me/business-hours", can(permissions.ViewAgenda), businessHoursHandler.Get)
			secured.PUT("/me/business-hours", can(permissions.ManageBusinessHours), businessHoursHandler.Update)

			secured.GET("/me/time-off", can(permissions.ViewAgenda), timeOffHandler.List)
			secured.POST("/me/time-off", can(permissions.ManageTimeOff), timeOffHandler.Create)
			secured.DELETE("/me/time-off/:id", can(permissions.ManageTimeOff), timeOffHandler.Delete)

			secured.GET("/me/services", can(permissions.ViewAgenda), serviceHandler.List)
			secured.POST("/me/services", can(permissions.ManageServices), serviceHandler.Create)
			secured.PATCH("/me/services/:id", can(permissions.ManageServices), serviceHandler.Update)

			secured.GET("/me/professionals", can(permissions.ViewAgenda), professionalHandler.List)
			secured.POST("/me/professionals", can(permissions.ManageProfessionals), professionalHandler.Create)
			secured.PATCH("/me/professionals/:id", can(permissions.ManageProfessionals), professionalHandler.Update)

			secured.GET("/me/clients", can(permissions.ManageClients), clientHandler.List)
			secured.POST("/me/clients", can(permissions.ManageClients), clientHandler.Create)
			secured.PUT("/me/clients/:id", can(permissions.ManageClients), clientHandler.Update)
			secured.GET("/me/clients/:id/history", can(permissions.ManageClients), clientHandler.History)

			secured.GET("/me/members", can(permissions.ManageMembers), memberHandler.List)
			secured.POST("/me/members", can(permissions.ManageMembers), memberHandler.Add)
			secured.PATCH("/me/members/:id", can(permissions.ManageMembers), memberHandler.UpdateRole)
			secured.DELETE("/me/members/:id", can(permissions.ManageMembers), memberHandler.Remove)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.GET("/me/availability", can(permissions.ViewAgenda), appointmentHandler.Availability)
			secured.POST("/me/appointments", can(permissions.CreateAppointment), appointmentHandler.Create)
			secured.GET("/me/appointments", can(permissions.ViewAgenda), appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", can(permissions.ViewAgenda), appointmentHandler.ListByMonth)
			secured.PATCH("/me/appointments/:id/status", can(permissions.UpdateAppointmentStatus), appointmentHandler.UpdateStatus)
			secured.PATCH("/me/appointments/:id/cancel", can(permissions.UpdateAppointmentStatus), appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", can(permissions.UpdateAppointmentStatus), appointmentHandler.Complete)

			secured.GET("/me/dashboard", can(permissions.ViewAgenda), dashboardHandler.Get)
			secured.GET("/me/audit-logs", can(permissions.ViewAuditLogs), auditLogsHandler.List)

			// ------------------------------
			// ÁREA DO CLIENTE
			// ------------------------------
			secured.GET("/client/appointments", can(permissions.BookSelf), clientAreaHandler.List)
			secured.POST("/client/appointments", can(permissions.BookSelf), clientAreaHandler.Book)
			secured.PATCH("/client/appointments/:id/cancel", can(permissions.CancelOwnAppointment), clientAreaHandler.Cancel)
		}
	}
}
