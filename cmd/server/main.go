package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/adapters/http/routes"
	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/config"
	"washtech-rental/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "washtech-rental/docs" // Swagger docs
)

// @title WashTech Rental API
// @version 1.0
// @description Washing machine rental: catalog, reservations, operator workflow and admin oversight

// @contact.name API Support

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed bootstrap superadmin and sample machines
	if err := config.NewSeeder(db, cfg).Run(context.Background()); err != nil {
		log.Printf("⚠️ Warning: Failed to seed database: %v", err)
	}

	// Daily operator reminders
	reminders := services.NewReminderService(repositories.NewRepos(db), cfg.Jobs.ReminderCron)
	if err := reminders.Start(); err != nil {
		log.Fatalf("❌ Failed to start reminder job: %v", err)
	}
	defer reminders.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "WashTech Rental API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db and cfg for dependency injection)
	routes.Setup(app, db, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
