package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"question-bank/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort  string
	UploadPath  string
	OutputPath  string
	MaxFileSize int64
	LogLevel    string
	LogFormat   string

	DatabaseDriver string
	DatabaseDSN    string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	ArtifactStore  string

	LLMProvider          string
	LLMModel             string
	GCPProjectID         string
	GCPLocation          string
	GeminiAPIKey         string
	AnthropicAPIKey      string
	LLMRequestsPerMinute int
	LLMMaxInputChars     int

	UploadRetention     time.Duration
	UploadSweepSchedule string
	AllowedOrigins      []string
	ShutdownTimeout     time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:  getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		UploadPath:  getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		OutputPath:  getEnvOrDefault("OUTPUT_PATH", "./generated"),
		MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024), // 50MB default
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:   getEnvOrDefault("LOG_FORMAT", "json"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:    getEnvOrDefault("DATABASE_DSN", "./data/questionbank.db"),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseBucket: getEnvOrDefault("SUPABASE_BUCKET", "generated-pdfs"),
		ArtifactStore:  strings.ToLower(getEnvOrDefault("ARTIFACT_STORE", "local")),

		LLMProvider:          strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "vertex")),
		LLMModel:             getEnvOrDefault("LLM_MODEL", ""),
		GCPProjectID:         getEnvOrDefault("GCP_PROJECT_ID", ""),
		GCPLocation:          getEnvOrDefault("GCP_LOCATION", "us-central1"),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		AnthropicAPIKey:      getEnvOrDefault("ANTHROPIC_API_KEY", ""),
		LLMRequestsPerMinute: getEnvIntOrDefault("LLM_REQUESTS_PER_MINUTE", 30),
		LLMMaxInputChars:     getEnvIntOrDefault("LLM_MAX_INPUT_CHARS", 120000),

		UploadRetention:     getEnvDurationOrDefault("UPLOAD_RETENTION", 24*time.Hour),
		UploadSweepSchedule: getEnvOrDefault("UPLOAD_SWEEP_SCHEDULE", "@every 1h"),
		AllowedOrigins:      getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		ShutdownTimeout:     getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func (c *AppConfig) GetServerPort() string  { return c.ServerPort }
func (c *AppConfig) GetUploadPath() string  { return c.UploadPath }
func (c *AppConfig) GetOutputPath() string  { return c.OutputPath }
func (c *AppConfig) GetMaxFileSize() int64  { return c.MaxFileSize }
func (c *AppConfig) GetLogLevel() string    { return c.LogLevel }
func (c *AppConfig) GetLogFormat() string   { return c.LogFormat }
func (c *AppConfig) GetSupabaseURL() string { return c.SupabaseURL }
func (c *AppConfig) GetSupabaseKey() string { return c.SupabaseKey }

// GetDatabaseDriver returns sqlite, postgres or supabase
func (c *AppConfig) GetDatabaseDriver() string {
	return c.DatabaseDriver
}

// GetDatabaseDSN returns the sqlite file path or postgres connection string
func (c *AppConfig) GetDatabaseDSN() string {
	return c.DatabaseDSN
}

// GetSupabaseBucket returns the storage bucket for generated PDFs
func (c *AppConfig) GetSupabaseBucket() string {
	return c.SupabaseBucket
}

// GetArtifactStore returns local or supabase
func (c *AppConfig) GetArtifactStore() string {
	return c.ArtifactStore
}

func (c *AppConfig) GetLLMProvider() string     { return c.LLMProvider }
func (c *AppConfig) GetLLMModel() string        { return c.LLMModel }
func (c *AppConfig) GetGCPProjectID() string    { return c.GCPProjectID }
func (c *AppConfig) GetGCPLocation() string     { return c.GCPLocation }
func (c *AppConfig) GetGeminiAPIKey() string    { return c.GeminiAPIKey }
func (c *AppConfig) GetAnthropicAPIKey() string { return c.AnthropicAPIKey }

// GetLLMRequestsPerMinute returns the model call budget; 0 disables pacing
func (c *AppConfig) GetLLMRequestsPerMinute() int {
	return c.LLMRequestsPerMinute
}

// GetLLMMaxInputChars returns the prompt input truncation limit
func (c *AppConfig) GetLLMMaxInputChars() int {
	return c.LLMMaxInputChars
}

// GetUploadRetention returns how long leftover uploads are kept
func (c *AppConfig) GetUploadRetention() time.Duration {
	return c.UploadRetention
}

func (c *AppConfig) GetUploadSweepSchedule() string     { return c.UploadSweepSchedule }
func (c *AppConfig) GetAllowedOrigins() []string        { return c.AllowedOrigins }
func (c *AppConfig) GetShutdownTimeout() time.Duration { return c.ShutdownTimeout }

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
