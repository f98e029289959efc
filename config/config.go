package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DBUrl       string
	DBMaxConns  int
	DBMinConns  int
	JWTSecret   string
	FrontendURL string
	LogLevel    string
	// Apply the embedded schema on startup
	MigrateOnStart bool
	// Redis: category cache + event publishing
	RedisURL         string
	RedisPassword    string
	CategoryCacheTTL time.Duration
	NotifyChannel    string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	NotifyEmailTo string
	// Background notification delivery
	NotifyQueueSize int
	NotifyTimeout   time.Duration
	// Doctor dashboard look-back window
	DoctorStatsWindowDays int
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production injects the environment
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		DBUrl:          getEnv("DATABASE_URL", ""),
		DBMaxConns:     getEnvInt("DB_MAX_CONNS", 25),
		DBMinConns:     getEnvInt("DB_MIN_CONNS", 5),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", false),
		// Redis
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		CategoryCacheTTL: getEnvDuration("CATEGORY_CACHE_TTL", 10*time.Minute),
		NotifyChannel:    getEnv("NOTIFY_CHANNEL", "pcd-jobs:events"),
		// SMTP
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", ""),
		NotifyEmailTo: getEnv("NOTIFY_EMAIL_TO", ""),
		// Notifications
		NotifyQueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		NotifyTimeout:   getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),

		DoctorStatsWindowDays: getEnvInt("DOCTOR_STATS_WINDOW_DAYS", 30),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Every authenticated request will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Category cache and event publishing are disabled.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("90s", "10m")
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
