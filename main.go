package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clipvault/internal/handlers"
	"clipvault/internal/middleware"
	"clipvault/internal/models"
	"clipvault/internal/repositories"
	"clipvault/internal/services"
	"clipvault/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":5000")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("ENABLE_ADMIN_ROUTES", false)
	viper.SetDefault("ALLOW_ADMIN_SIGNUP", true)
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	jwtSecret := viper.GetString("JWT_SECRET")
	enableAdminRoutes := viper.GetBool("ENABLE_ADMIN_ROUTES")
	allowAdminSignup := viper.GetBool("ALLOW_ADMIN_SIGNUP")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// --- Initialize Database ---
	// Postgres when DATABASE_URL is set, a local sqlite file otherwise.
	var db *gorm.DB
	var err error
	if databaseURL != "" {
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open("clipvault.db"), &gorm.Config{})
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Tag{}, &models.Entry{}); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Audit Sink (optional) ---
	var auditSink middleware.AuditSink
	if rabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
		auditSink = mqClient

		// --- Start RabbitMQ Consumer in a Goroutine ---
		// Drains the audit queue so records land in the operational log
		// even when no external consumer is attached.
		go func() {
			log.Println("Starting RabbitMQ consumer for audit records...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received audit record (tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeAuditEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set; audit records stay log-only")
	}

	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	tagRepo := repositories.NewGORMTagRepository(db)
	entryRepo := repositories.NewGORMEntryRepository(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(userRepo, jwtSecret, allowAdminSignup)
	entryService := services.NewEntryService(entryRepo, tagRepo)
	tagService := services.NewTagService(tagRepo)
	adminService := services.NewAdminService(userRepo, entryRepo, tagRepo)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	entryHandler := handlers.NewEntryHandler(entryService)
	tagHandler := handlers.NewTagHandler(tagService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(cors.New())
	app.Use(middleware.Audit(auditSink))

	// --- API Routes ---
	api := app.Group("/api")

	// Authentication routes (public)
	authHandler.RegisterRoutes(api)

	// Protected routes (require JWT authentication)
	protected := api.Group("", middleware.AuthRequired(authService))
	entryHandler.RegisterRoutes(protected)
	tagHandler.RegisterRoutes(protected)

	// Admin routes exist only when explicitly enabled.
	if enableAdminRoutes {
		adminHandler.RegisterRoutes(protected.Group("", middleware.AdminRequired()))
		log.Println("Admin routes enabled")
	}

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
