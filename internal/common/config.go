package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	OCR    OCRConfig
	AI     AIConfig
	Bulk   BulkConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// StoreConfig holds record-store configuration
type StoreConfig struct {
	Path       string // sqlite database file
	UploadsDir string // root of per-drawing page rasters
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int // 6 = single uniform block; regions are pre-cropped
	OEM           int // 1 = LSTM; 0 = engine default
	TempDir       string
}

// AIConfig holds vision-model configuration
type AIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Timeout     time.Duration
	ImageMaxDim int // longest side sent to the model, px
}

// BulkConfig holds bulk-orchestrator configuration
type BulkConfig struct {
	BatchSize   int // pages dispatched concurrently per batch
	PageTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Path:       getEnv("STORE_PATH", "./hilyte.db"),
			UploadsDir: getEnv("UPLOADS_DIR", "./uploads"),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
			OEM:           getEnvAsInt("TESSERACT_OEM", 1),
			TempDir:       getEnv("OCR_TEMP_DIR", ""),
		},
		AI: AIConfig{
			APIKey:      getEnv("ANTHROPIC_API_KEY", ""),
			Model:       getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens:   getEnvAsInt("ANTHROPIC_MAX_TOKENS", 4000),
			Timeout:     getEnvAsDuration("ANTHROPIC_TIMEOUT", 90*time.Second),
			ImageMaxDim: getEnvAsInt("AI_IMAGE_MAX_DIM", 2000),
		},
		Bulk: BulkConfig{
			BatchSize:   getEnvAsInt("BULK_BATCH_SIZE", 5),
			PageTimeout: getEnvAsDuration("BULK_PAGE_TIMEOUT", 3*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration. The AI key is optional: with
// no key the AI service reports itself disabled and callers use the OCR path.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Store.Path == "" {
		return NewAppError("CONFIG_ERROR", "STORE_PATH is required", ErrInvalidInput)
	}
	if c.Store.UploadsDir == "" {
		return NewAppError("CONFIG_ERROR", "UPLOADS_DIR is required", ErrInvalidInput)
	}
	if c.Bulk.BatchSize <= 0 {
		return NewAppError("CONFIG_ERROR", "BULK_BATCH_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
