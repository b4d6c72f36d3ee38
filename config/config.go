package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// languageNames maps 2-letter language codes to the full language names
// embedded in the analysis prompt.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
}

// Config holds all configuration for the chart analyze service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port         string
	APIAuthToken string

	// LLM configuration
	LLMProvider    string
	OpenAIAPIKey   string
	OpenAIModel    string
	GeminiAPIKey   string
	GeminiModel    string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration

	// Analysis configuration
	DefaultLanguage string
	RetentionDays   int

	// Logging
	LogLevel string
}

// Load loads configuration from the environment, with an optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "chartai"),

		// Server defaults
		Port:         getEnv("PORT", "8080"),
		APIAuthToken: getEnv("API_AUTH_TOKEN", ""),

		// LLM defaults
		LLMProvider:  getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MaxTokens:    getIntEnv("MAX_TOKENS", 4000),
		Temperature:  getFloatEnv("TEMPERATURE", 0.7),
		// Multimodal inference is slow; give it two minutes.
		RequestTimeout: getDurationEnv("REQUEST_TIMEOUT", 120*time.Second),

		// Analysis defaults
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		RetentionDays:   getIntEnv("RETENTION_DAYS", 7),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// LanguageName resolves a 2-letter language code to the full name used in
// the prompt. Unknown codes pass through as-is.
func LanguageName(code string) string {
	if name, exists := languageNames[code]; exists {
		return name
	}
	return code
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnv gets a float environment variable or returns a default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
