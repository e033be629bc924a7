package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	LogDir      string
	LogMaxFiles int

	// LLM Configuration
	DefaultModel      string
	GeminiAPIKey      string
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	GeminiBaseURL     string
	OpenAIBaseURL     string
	AnthropicBaseURL  string
	EnableLorem       bool
	ProviderMaxRetry  int
	ProviderTimeout   time.Duration
	ProviderCheckTime time.Duration

	// Rate limiting
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitPerHour   int

	// File storage root for uploaded context files (read-only here)
	FileStorageDir string
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", "sqlite://promptlab.db"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
		// LLM Configuration
		DefaultModel:      getEnv("DEFAULT_MODEL", "gemini-1.5-flash"),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicBaseURL:  getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		EnableLorem:       getEnv("ENABLE_LOREM", getDefaultLorem(env)) == "true",
		ProviderMaxRetry:  getEnvInt("PROVIDER_MAX_RETRIES", 3),
		ProviderTimeout:   getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		ProviderCheckTime: getEnvDuration("PROVIDER_CHECK_TIMEOUT", 10*time.Second),
		// Rate limiting
		RateLimitEnabled:   getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		RateLimitPerHour:   getEnvInt("RATE_LIMIT_PER_HOUR", 100),
		FileStorageDir:     getEnv("FILE_STORAGE_DIR", "./uploads"),
	}
}

// getDefaultLorem enables the offline mock provider outside production
func getDefaultLorem(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix, ok := os.LookupEnv("TABLE_PREFIX"); ok {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go durations ("45s") or plain seconds ("45")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
