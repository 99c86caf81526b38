package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port               string
	LogLevel           string
	DatabasePath       string
	MaxUploadSizeBytes int64

	// External extraction collaborator.
	ExtractorURL            string
	ExtractorRequestTimeout time.Duration

	// Processing job lifecycle.
	JobWaitTimeout time.Duration
	JobRetention   time.Duration

	// Ledger reconciliation.
	SummaryTolerance float64

	// Named slot under which the canonical statement is persisted.
	StatementSlot string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	summaryToleranceStr := getEnv("SUMMARY_TOLERANCE", "0.01")
	summaryTolerance, err := strconv.ParseFloat(summaryToleranceStr, 64)
	if err != nil || summaryTolerance < 0 {
		log.Printf("WARNING: Invalid SUMMARY_TOLERANCE '%s'. Using default 0.01. Error: %v", summaryToleranceStr, err)
		summaryTolerance = 0.01
	}

	Cfg = &AppConfig{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabasePath:       getEnv("DATABASE_PATH", "./mpesaviz.db"),
		MaxUploadSizeBytes: maxUploadSizeBytes,

		ExtractorURL:            getEnv("EXTRACTOR_URL", "http://localhost:5000/upload"),
		ExtractorRequestTimeout: getEnvAsDuration("EXTRACTOR_REQUEST_TIMEOUT", 60*time.Second),

		JobWaitTimeout: getEnvAsDuration("JOB_WAIT_TIMEOUT", 2*time.Minute),
		JobRetention:   getEnvAsDuration("JOB_RETENTION", 15*time.Minute),

		SummaryTolerance: summaryTolerance,

		StatementSlot: getEnv("STATEMENT_SLOT", "latest"),
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, ExtractorURL=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.ExtractorURL)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		log.Printf("Duration value for %s not set or empty, using default: %s", key, fallback.String())
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
