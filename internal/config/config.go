package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort string

	DatabaseType string // sqlite, postgres or mysql
	DatabaseURL  string // postgres/mysql connection string
	DatabasePath string // sqlite file path

	MigrationsPath string
	CatalogPath    string

	// Cadence engine settings. All wall-clock values are interpreted in
	// Timezone, never in the host zone.
	Timezone       string
	DailySpawnTime string // HH:MM
	WeeklyEvalDay  string // weekday name
	WeeklyEvalTime string // HH:MM
	WeekEndDay     string // weekday the trailing score window ends on
	TickInterval   time.Duration
	TickBatchSize  int

	JWTSecret       string
	SessionDuration time.Duration

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	Debug bool
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	return &Config{
		ServerPort: getEnv("PORT", "8080"),

		DatabaseType: getEnv("DB_TYPE", "sqlite"),
		DatabaseURL:  getEnv("DB_URL", ""),
		DatabasePath: getEnv("DB_PATH", "./classquest.db"),

		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		CatalogPath:    getEnv("CATALOG_PATH", "./catalog.yaml"),

		Timezone:       getEnv("ENGINE_TIMEZONE", "America/New_York"),
		DailySpawnTime: getEnv("DAILY_SPAWN_TIME", "06:00"),
		WeeklyEvalDay:  getEnv("WEEKLY_EVAL_DAY", "Friday"),
		WeeklyEvalTime: getEnv("WEEKLY_EVAL_TIME", "17:00"),
		WeekEndDay:     getEnv("WEEK_END_DAY", "Friday"),
		TickInterval:   getEnvDuration("TICK_INTERVAL", 5*time.Minute),
		TickBatchSize:  getEnvInt("TICK_BATCH_SIZE", 500),

		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 24*time.Hour),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "ClassQuest"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		Debug: getEnv("DEBUG", "") == "true",
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q: %v", key, raw, err)
		return defaultValue
	}
	return value
}

// getEnvDuration reads a duration environment variable or returns a default
// value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Ignoring invalid %s=%q: %v", key, raw, err)
		return defaultValue
	}
	return value
}
