package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"fittrack/internal/config"
	"fittrack/internal/database"
	"fittrack/internal/events"
	"fittrack/internal/handlers"
	"fittrack/internal/middleware"
	"fittrack/internal/notify"
	"fittrack/internal/repositories"
	"fittrack/internal/services"
	"fittrack/pkg/rabbitmq"
)

// purgeInterval is how often expired token revocations are removed.
const purgeInterval = time.Hour

// shutdownTimeout bounds how long in-flight requests may delay shutdown.
const shutdownTimeout = 10 * time.Second

// appDeps are the external resources the HTTP app is built on.
type appDeps struct {
	DB      *gorm.DB
	Emitter *events.Emitter
	Mailer  services.WelcomeMailer
	// Broker is reported by /health: "connected" or "disabled".
	Broker string
}

// newApp wires repositories, services and handlers into a Fiber app. The
// returned closeStreams ends open event streams and must run before shutdown.
func newApp(cfg *config.Config, deps appDeps) (app *fiber.App, authService *services.AuthService, closeStreams func()) {
	// --- Initialize Repositories ---
	userRepo := repositories.NewGORMUserRepository(deps.DB)
	tokenRepo := repositories.NewGORMTokenRepository(deps.DB)
	stepRepo := repositories.NewGORMStepRepository(deps.DB)
	weightRepo := repositories.NewGORMWeightRepository(deps.DB)
	workoutRepo := repositories.NewGORMWorkoutRepository(deps.DB)
	dailyTaskRepo := repositories.NewGORMDailyTaskRepository(deps.DB)

	// --- Initialize Services ---
	sessions := services.NewSessionStore()
	authService = services.NewAuthService(userRepo, tokenRepo, sessions, services.AuthConfig{
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	if deps.Mailer != nil {
		authService.SetMailer(deps.Mailer)
	}
	// Session changes go to the broker alongside entry changes.
	sessions.Subscribe(func(ev services.SessionEvent) {
		deps.Emitter.Emit(events.Session(ev.Type, ev.UserID, ev.At))
	})

	stepService := services.NewStepService(stepRepo, deps.Emitter)
	weightService := services.NewWeightService(weightRepo, deps.Emitter)
	workoutService := services.NewWorkoutService(workoutRepo, deps.Emitter)
	dailyTaskService := services.NewDailyTaskService(dailyTaskRepo, deps.Emitter, cfg.Location)
	importService := services.NewImportService(stepService, weightService)

	// --- Initialize Fiber App ---
	app = fiber.New(fiber.Config{AppName: "fittrack"})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		dbStatus := "connected"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, dbStatus = "degraded", "unreachable"
		}
		code := fiber.StatusOK
		if status != "healthy" {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"rabbitmq": deps.Broker,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler := handlers.NewAuthHandler(authService, handlers.AuthHandlerConfig{
		CookieSecure:   cfg.CookieSecure,
		LoginRateLimit: cfg.LoginRateLimit,
	})
	authHandler.RegisterRoutes(apiV1)
	handlers.NewNavHandler().RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewStepHandler(stepService).RegisterRoutes(protected)
	handlers.NewWeightHandler(weightService).RegisterRoutes(protected)
	handlers.NewWorkoutHandler(workoutService).RegisterRoutes(protected)
	handlers.NewDailyTaskHandler(dailyTaskService).RegisterRoutes(protected)
	handlers.NewImportHandler(importService).RegisterRoutes(protected)

	return app, authService, authHandler.CloseStreams
}

// purgeRevokedTokens removes stale revocations every interval until ctx ends.
func purgeRevokedTokens(ctx context.Context, repo *repositories.GORMTokenRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.PurgeExpired(ctx, now)
			if err != nil {
				log.Printf("Error purging revoked tokens: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Purged %d expired token revocations", n)
			}
		}
	}
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Initialize RabbitMQ Client (optional) ---
	deps := appDeps{DB: db, Broker: "disabled"}
	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient
		deps.Broker = "connected"

		go func() {
			log.Println("Starting RabbitMQ consumer for fittrack events...")
			if consumerErr := mqClient.ConsumeEvents(rabbitmq.HandleEventMessage); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set, events are not published")
	}
	deps.Emitter = events.NewEmitter(publisher)

	// --- Mail (optional) ---
	if cfg.ResendAPIKey != "" {
		deps.Mailer = notify.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	}

	app, _, closeStreams := newApp(cfg, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go purgeRevokedTokens(ctx, repositories.NewGORMTokenRepository(db), purgeInterval)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	closeStreams()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	cancel()

	// Close RabbitMQ connection is handled by defer in main
	log.Println("Server gracefully stopped")
}
