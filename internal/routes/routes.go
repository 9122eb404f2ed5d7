package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vet-clinic-server/internal/config"
	"vet-clinic-server/internal/handlers"
	"vet-clinic-server/internal/metrics"
	"vet-clinic-server/internal/middleware"
	"vet-clinic-server/internal/models"
	"vet-clinic-server/internal/scheduler"
	"vet-clinic-server/internal/storage"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger, m *metrics.Collector) {
	// The scheduler is the only component with real invariants; it goes
	// through an injected repository rather than touching the DB directly.
	schedulerSvc := scheduler.NewService(storage.NewAppointmentRepository(db), log)

	authHandler := handlers.NewAuthHandler(db, cfg, log)
	appointmentHandler := handlers.NewAppointmentHandler(schedulerSvc, m)
	petHandler := handlers.NewPetHandler(db, log)
	recordHandler := handlers.NewClinicalRecordHandler(db, log)
	productHandler := handlers.NewProductHandler(db, log)
	vetHandler := handlers.NewVeterinarianHandler(db)
	staffHandler := handlers.NewStaffHandler(db, schedulerSvc, log)
	adminHandler := handlers.NewAdminHandler(db, log)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}
		public.POST("/staff/login", authHandler.StaffLogin)
		public.POST("/admin/login", authHandler.AdminLogin)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		authRoutesPrivate.Use(middleware.RoleAuthMiddleware(models.RoleClient))
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Veterinarian catalog, readable by any authenticated role
		vetRoutes := private.Group("/veterinarians")
		{
			vetRoutes.GET("", vetHandler.GetVeterinarians)
			vetRoutes.GET("/:id", vetHandler.GetVeterinarianByID)
		}

		// Appointment routes (client-facing scheduler surface)
		appointmentRoutes := private.Group("/appointments")
		{
			// Slot availability is informational and open to all roles
			appointmentRoutes.GET("/slots", appointmentHandler.GetAvailableSlots)

			clientOnly := appointmentRoutes.Group("")
			clientOnly.Use(middleware.RoleAuthMiddleware(models.RoleClient))
			{
				clientOnly.POST("", appointmentHandler.CreateAppointment)
				clientOnly.GET("", appointmentHandler.ListAppointments)
				clientOnly.GET("/:id", appointmentHandler.GetAppointmentByID)
				clientOnly.PUT("/:id", appointmentHandler.UpdateAppointment)
				clientOnly.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			}
		}

		// Pet routes
		petRoutes := private.Group("/pets")
		petRoutes.Use(middleware.RoleAuthMiddleware(models.RoleClient))
		{
			petRoutes.POST("", petHandler.CreatePet)
			petRoutes.GET("", petHandler.GetPets)
			petRoutes.GET("/:id", petHandler.GetPetByID)
			petRoutes.PUT("/:id", petHandler.UpdatePet)
			petRoutes.DELETE("/:id", petHandler.DeletePet)
		}

		// Clinical history routes
		recordRoutes := private.Group("/clinical-records")
		recordRoutes.Use(middleware.RoleAuthMiddleware(models.RoleClient))
		{
			recordRoutes.POST("", recordHandler.CreateClinicalRecord)
			recordRoutes.GET("/pet/:petId", recordHandler.GetRecordsByPet)
			recordRoutes.GET("/pet/:petId/full", recordHandler.GetFullHistory)
			recordRoutes.GET("/:id", recordHandler.GetRecordByID)
			recordRoutes.PUT("/:id", recordHandler.UpdateClinicalRecord)
			recordRoutes.DELETE("/:id", recordHandler.DeleteClinicalRecord)
		}

		// Staff console (attendants and admins)
		staffRoutes := private.Group("/staff")
		staffRoutes.Use(middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin))
		{
			staffRoutes.GET("/appointments", staffHandler.GetAppointments)
			staffRoutes.PATCH("/appointments/:id/status", staffHandler.UpdateAppointmentStatus)
			staffRoutes.GET("/clients", staffHandler.GetClients)
			staffRoutes.GET("/clients/:id", staffHandler.GetClientByID)
			staffRoutes.GET("/veterinarians", vetHandler.GetVeterinarians)
			staffRoutes.GET("/products", productHandler.GetProducts)
		}

		// Inventory (staff read, admin write)
		productRoutes := private.Group("/products")
		{
			productRead := productRoutes.Group("")
			productRead.Use(middleware.RoleAuthMiddleware(models.RoleStaff, models.RoleAdmin))
			{
				productRead.GET("", productHandler.GetProducts)
				productRead.GET("/:id", productHandler.GetProductByID)
			}

			productWrite := productRoutes.Group("")
			productWrite.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				productWrite.POST("", productHandler.CreateProduct)
				productWrite.PUT("/:id", productHandler.UpdateProduct)
				productWrite.DELETE("/:id", productHandler.DeleteProduct)
			}
		}

		// Admin console
		adminRoutes := private.Group("/admin")
		adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			adminRoutes.POST("/veterinarians", adminHandler.CreateVeterinarian)
			adminRoutes.GET("/veterinarians", adminHandler.GetVeterinarians)
			adminRoutes.PUT("/veterinarians/:id", adminHandler.UpdateVeterinarian)
			adminRoutes.DELETE("/veterinarians/:id", adminHandler.DeleteVeterinarian)
			adminRoutes.GET("/dashboard", adminHandler.GetDashboard)
			adminRoutes.GET("/reports", adminHandler.GetReport)
			adminRoutes.GET("/clients", staffHandler.GetClients)
			adminRoutes.GET("/clients/:id", staffHandler.GetClientByID)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", metrics.Handler())
}
