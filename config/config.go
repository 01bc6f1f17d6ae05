package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no credential for the extraction service is configured.
var ErrMissingAPIKey = errors.New("API Key is missing. Please ensure API_KEY is configured")

type Config struct {
	ServerPort       string
	APIKey           string
	GeminiModel      string
	GeminiBaseURL    string
	MaxAttempts      int
	RequestTimeout   time.Duration
	MaxUploadBytes   int64
	LogLevel         string
	LogFormat        string
	CORSAllowOrigins []string
}

const (
	DefaultGeminiModel   = "gemini-3-flash-preview"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GEMINI_MODEL", DefaultGeminiModel)
	v.SetDefault("GEMINI_BASE_URL", DefaultGeminiBaseURL)
	v.SetDefault("AUDIT_MAX_ATTEMPTS", 1)
	v.SetDefault("AUDIT_REQUEST_TIMEOUT", "0s")
	v.SetDefault("MAX_UPLOAD_MB", 32)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	apiKey := strings.TrimSpace(v.GetString("API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(v.GetString("GEMINI_API_KEY"))
	}

	return &Config{
		ServerPort:       v.GetString("SERVER_PORT"),
		APIKey:           apiKey,
		GeminiModel:      v.GetString("GEMINI_MODEL"),
		GeminiBaseURL:    v.GetString("GEMINI_BASE_URL"),
		MaxAttempts:      v.GetInt("AUDIT_MAX_ATTEMPTS"),
		RequestTimeout:   v.GetDuration("AUDIT_REQUEST_TIMEOUT"),
		MaxUploadBytes:   v.GetInt64("MAX_UPLOAD_MB") << 20,
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFormat:        v.GetString("LOG_FORMAT"),
		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
	}
}

// RequireAPIKey reports ErrMissingAPIKey when the credential is absent.
func (c *Config) RequireAPIKey() error {
	if c == nil || strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
