package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthcare-booking/config"
	"healthcare-booking/database"
	"healthcare-booking/database/seeders"
	"healthcare-booking/logger"
	"healthcare-booking/routes"
	"healthcare-booking/services/accounts"
	"healthcare-booking/services/auth"
	"healthcare-booking/services/blog"
	"healthcare-booking/services/events"
	"healthcare-booking/services/jobs"
	"healthcare-booking/services/notification"
	"healthcare-booking/services/ratelimit"
	"healthcare-booking/services/reminder"
	"healthcare-booking/services/storage"
	"healthcare-booking/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", err)
	}
	logger.Configure(cfg)
	if cfg.EncryptionKey == "" {
		logger.Warning("ENCRYPTION_KEY is not set; confirming online appointments will fail")
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize the database", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seeders.SeedAdmin(ctx, accounts.NewGormStore(db), auth.BcryptHasher{}, cfg); err != nil {
		logger.Error("Failed to seed administrator", err)
	}

	integrations := buildIntegrations(ctx, cfg, db)

	scheduler := jobs.NewScheduler(cfg.Timezone)
	reminders := reminder.NewService(reminder.NewGormStore(db), integrations.Notifier)
	if err := scheduler.Add(cfg.ReminderCron, "appointment-reminders", reminders.Run); err != nil {
		logger.Fatal("Failed to schedule reminders", err)
	}
	if err := scheduler.Add("@every 5m", "rate-limit-prune", integrations.Limits.Prune); err != nil {
		logger.Fatal("Failed to schedule rate limit pruning", err)
	}
	scheduler.Start()

	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		BodyLimit:       50 * 1024 * 1024, // 50MB body limit
		ErrorHandler:    errorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	asyncLogger := routes.SetupRoutes(app, db, cfg, integrations)

	go func() {
		addr := cfg.AppHost + ":" + cfg.AppPort
		logger.Success("Server is running on ip: " + cfg.AppHost + " port: " + cfg.AppPort)
		if err := app.Listen(addr); err != nil {
			logger.Error("Server stopped", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Failed to shut down the server cleanly", err)
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(stopCtx)
	asyncLogger.Close()
	if err := integrations.Publisher.Close(); err != nil {
		logger.Error("Failed to close event publisher", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Success("Shutdown complete")
}

// buildIntegrations picks each outside service from the configuration, falling back to a local
// implementation when it is not configured.
func buildIntegrations(ctx context.Context, cfg *config.Config, db *gorm.DB) routes.Integrations {
	in := routes.Integrations{
		Publisher: events.Noop{},
		Notifier:  notification.LogNotifier{},
		Uploader:  storage.Disabled{},
	}

	if len(cfg.KafkaBrokers) > 0 {
		in.Publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Publishing appointment events to Kafka topic " + cfg.KafkaTopic)
	}

	if cfg.S3Bucket != "" || cfg.SQSReminderURL != "" {
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("Failed to load AWS configuration; uploads and queued notifications are disabled", err)
		} else {
			if cfg.S3Bucket != "" {
				in.Uploader = storage.NewS3Storage(awsCfg, cfg.S3Bucket, cfg.S3PublicURL)
			}
			if cfg.SQSReminderURL != "" {
				in.Notifier = notification.NewSQSNotifier(awsCfg, cfg.SQSReminderURL)
			}
		}
	}

	if cfg.GeminiAPIKey != "" {
		seo, err := blog.NewGeminiSeo(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("SEO suggestions are disabled", err)
		} else {
			in.Seo = seo
		}
	}

	var counters ratelimit.CounterStore = ratelimit.NewMemoryStore()
	if cfg.RateLimitStore == "database" {
		counters = ratelimit.NewDBStore(db)
	}
	in.Limits = routes.NewRateLimits(counters, cfg)
	return in
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// errorHandler renders errors that escape the handlers in the common response shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	} else {
		logger.Error("Unhandled error on "+c.Method()+" "+c.Path(), err)
	}
	return c.Status(status).JSON(types.ApiResponse{Message: message, Status: status})
}
