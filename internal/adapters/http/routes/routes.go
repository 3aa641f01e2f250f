package routes

import (
	"washtech-rental/internal/adapters/http/handlers"
	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/config"
	"washtech-rental/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	repos := repositories.NewRepos(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	tx := repositories.NewTransactor(db)

	// Initialize services
	authService := services.NewAuthService(repos.Users, refreshTokenRepo, cfg)
	userService := services.NewUserService(repos.Users)
	machineService := services.NewMachineService(repos.Machines)
	reservationService := services.NewReservationService(repos, tx, services.NewPricingStrategy(cfg.Pricing))
	operatorService := services.NewOperatorService(repos.Reservations, reservationService)
	adminService := services.NewAdminService(repos.Reservations)
	dashboardService := services.NewDashboardService(repos, operatorService, adminService)
	paymentService := services.NewPaymentService(repos.Payments, reservationService)
	notificationService := services.NewNotificationService(repos.Notifications)
	reportService := services.NewReportService(repos.Reservations)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.AppMode, func() error { return config.HealthCheck(db) })
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	catalogHandler := handlers.NewCatalogHandler(machineService, reservationService)
	reservationHandler := handlers.NewReservationHandler(reservationService, paymentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	adminHandler := handlers.NewAdminHandler(machineService, reservationService, adminService)
	operatorHandler := handlers.NewOperatorHandler(operatorService)
	reportHandler := handlers.NewReportHandler(reportService)

	auth := middleware.AuthMiddleware(cfg, authService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	setupAuthRoutes(app.Group("/auth"), authHandler, auth)

	// Catalog routes (public)
	setupCatalogRoutes(app.Group("/catalogo"), catalogHandler)

	// Profile routes (Authenticated users)
	setupProfileRoutes(app.Group("/perfil", auth), userHandler)

	// Reservation routes (Authenticated users)
	setupReservationRoutes(app.Group("/reservas", auth), reservationHandler)

	// Notification routes (Authenticated users)
	notificationRoutes := app.Group("/notificaciones", auth)
	notificationRoutes.Get("/", notificationHandler.List)
	notificationRoutes.Post("/:id/leer", notificationHandler.MarkRead)

	// Dashboard routes (All authenticated users, dispatched on role)
	app.Get("/dashboard", auth, dashboardHandler.GetMyDashboard)

	// Admin routes (Admin/Superadmin only)
	setupAdminRoutes(app.Group("/admin", auth, middleware.AdminOnly()), adminHandler, userHandler)

	// Operator routes (Operator only)
	setupOperatorRoutes(app.Group("/operator", auth, middleware.OperatorOnly()), operatorHandler)

	// Reports (Authenticated users; scope is decided by the service)
	app.Get("/reportes/reservas.csv", auth, middleware.NoCacheHeaders(), reportHandler.ReservationsCSV)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, auth fiber.Handler) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", auth, handler.Me)
	router.Post("/logout-all", auth, handler.LogoutAll)
}

// setupCatalogRoutes configures the public catalog
func setupCatalogRoutes(router fiber.Router, handler *handlers.CatalogHandler) {
	router.Get("/", handler.List)
	router.Get("/lavadora/:id", handler.Detail)

	// Availability answers must never be served from a cache
	router.Get("/disponibilidad", middleware.NoCacheHeaders(), handler.AvailabilityOn)
	router.Get("/api/disponibilidad/:machine_id", middleware.NoCacheHeaders(), handler.CheckAvailability)
}

// setupProfileRoutes configures profile routes (Authenticated)
func setupProfileRoutes(router fiber.Router, handler *handlers.UserHandler) {
	router.Get("/", middleware.PrivateCacheHeaders(0), handler.GetProfile)
	router.Put("/", handler.UpdateProfile)
	router.Put("/password", handler.ChangePassword)
}

// setupReservationRoutes configures the client booking flow
func setupReservationRoutes(router fiber.Router, handler *handlers.ReservationHandler) {
	router.Get("/", handler.List)
	router.Post("/crear", middleware.ClientOnly(), handler.Create)
	router.Get("/:id", handler.Detail)
	router.Post("/:id/cancelar", handler.Cancel)

	// Payments
	router.Get("/:id/pagos", handler.ListPayments)
	router.Post("/:id/pagos", handler.RecordPayment)
}

// setupAdminRoutes configures admin routes (Admin only)
func setupAdminRoutes(router fiber.Router, admin *handlers.AdminHandler, users *handlers.UserHandler) {
	// Machines
	router.Get("/lavadoras", admin.ListMachines)
	router.Post("/lavadoras", admin.CreateMachine)
	router.Get("/lavadoras/:id", admin.GetMachine)
	router.Put("/lavadoras/:id", admin.UpdateMachine)
	router.Post("/lavadoras/:id/eliminar", admin.DeactivateMachine)

	// Users (role changes are superadmin only, enforced in the service)
	router.Get("/usuarios", users.ListUsers)
	router.Post("/usuarios/:id/rol", users.ChangeRole)
	router.Post("/usuarios/:id/desactivar", users.Deactivate)

	// Pending reservations
	router.Get("/pendientes", admin.Pending)
	router.Post("/pendientes/:id/asignar", admin.Assign)
	router.Post("/pendientes/:id/desasignar", admin.Unassign)

	// Operators available for assignment
	router.Get("/operadores", users.ListOperators)
}

// setupOperatorRoutes configures the operator workflow (Operator only)
func setupOperatorRoutes(router fiber.Router, handler *handlers.OperatorHandler) {
	router.Get("/dashboard", handler.Dashboard)
	router.Get("/reserva/:id", handler.View)
	router.Post("/reserva/:id/entregar", handler.Deliver)
	router.Post("/reserva/:id/cancelar", handler.Cancel)
}
