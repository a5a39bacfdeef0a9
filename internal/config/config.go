package config

import (
	"fmt"
	"os"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"checktool/internal/logger"
)

// OCR backend identifiers accepted by OCR_BACKEND.
const (
	BackendTesseract = "tesseract"
	BackendVision    = "vision"
)

type Config struct {
	// OpenAI Configuration. The API key is optional: without it the --llm
	// flag silently downgrades to regex extraction.
	OpenAIAPIKey string
	OpenAIModel  string

	// OCR Configuration
	OCRBackend    string
	TesseractBin  string
	PdftoppmBin   string
	TesseractLang string
	DPI           int
	MaxPages      int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OCRBackend:    getEnv("OCR_BACKEND", BackendTesseract),
		TesseractBin:  getEnv("TESSERACT_BIN", "tesseract"),
		PdftoppmBin:   getEnv("PDFTOPPM_BIN", "pdftoppm"),
		TesseractLang: getEnv("TESSERACT_LANG", "eng"),
		DPI:           getEnvInt("OCR_DPI", 300),
		MaxPages:      getEnvInt("OCR_MAX_PAGES", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OCRBackend, validation.Required,
			validation.In(BackendTesseract, BackendVision)),
		validation.Field(&c.LogLevel, validation.Required,
			validation.In("trace", "debug", "info", "warn", "error", "fatal", "panic")),
		validation.Field(&c.DPI, validation.Min(72), validation.Max(1200)),
		validation.Field(&c.MaxPages, validation.Min(0)),
	)
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
