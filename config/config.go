package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every environment driven setting of the service.
type Config struct {
	AppEnv      string
	AppHost     string
	AppPort     string
	FrontendURL string
	Timezone    *time.Location

	MeetingBaseURL string

	LogDir   string
	LogLevel string

	DBHost     string
	DBPort     string
	DBDatabase string
	DBUsername string
	DBPassword string
	DBSSLMode  string

	JWTSecret     string
	JWTExpiration time.Duration

	EncryptionKey string

	LockoutMaxAttempts int
	LockoutDuration    time.Duration

	RateLimitStore       string // "memory" or "database"
	RateLimitMaxAttempts int
	RateLimitWindow      time.Duration

	ForgotPasswordMaxAttempts int
	ForgotPasswordWindow      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	AWSRegion      string
	S3Bucket       string
	S3PublicURL    string
	SQSReminderURL string

	GeminiAPIKey string
	GeminiModel  string

	ReminderCron string

	AdminName     string
	AdminEmail    string
	AdminPassword string
	AdminPhone    string
}

// Load reads the .env file (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		AppHost:     getEnv("APP_HOST", "0.0.0.0"),
		AppPort:     getEnv("APP_PORT", "5000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		LogDir:   os.Getenv("LOG_DIR"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDatabase: getEnv("DB_DATABASE", "healthcare"),
		DBUsername: getEnv("DB_USERNAME", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTExpiration: time.Duration(getInt("JWT_EXPIRE_HOURS", 24*7)) * time.Hour,

		EncryptionKey: os.Getenv("ENCRYPTION_KEY"),

		LockoutMaxAttempts: getInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutDuration:    time.Duration(getInt("LOCKOUT_DURATION_MINUTES", 30)) * time.Minute,

		RateLimitStore:       getEnv("RATE_LIMIT_STORE", "memory"),
		RateLimitMaxAttempts: getInt("RATE_LIMIT_MAX_ATTEMPTS", 5),
		RateLimitWindow:      time.Duration(getInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,

		ForgotPasswordMaxAttempts: getInt("FORGOT_PASSWORD_MAX_ATTEMPTS", 3),
		ForgotPasswordWindow:      time.Duration(getInt("FORGOT_PASSWORD_WINDOW_MINUTES", 60)) * time.Minute,

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getEnv("KAFKA_APPOINTMENT_TOPIC", "appointment-events"),

		AWSRegion:      os.Getenv("AWS_REGION"),
		S3Bucket:       os.Getenv("S3_BUCKET"),
		S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),
		SQSReminderURL: os.Getenv("SQS_REMINDER_QUEUE_URL"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),

		ReminderCron: getEnv("REMINDER_CRON", "*/15 * * * *"),

		AdminName:     getEnv("ADMIN_NAME", "Administrator"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminPhone:    getEnv("ADMIN_PHONE", "0000000000"),
	}

	loc, err := time.LoadLocation(getEnv("APP_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Timezone = loc
	cfg.MeetingBaseURL = getEnv("MEETING_BASE_URL", strings.TrimRight(cfg.FrontendURL, "/")+"/consultation")

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	return cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUsername, c.DBPassword, c.DBDatabase, c.DBSSLMode)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
