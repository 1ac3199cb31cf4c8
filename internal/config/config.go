// Package config provides configuration for the chat service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Completion provider. An empty APIKey selects the offline provider.
	GroqAPIKey  string
	GroqBaseURL string
	LLMModel    string
	LLMTimeout  time.Duration

	// Dev seeding: when set, a dev user owning this bearer token is created
	// at startup so the service is usable without external provisioning.
	DevToken string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort:    getEnvInt("HTTP_PORT", 8080),
		DatabaseURL: getEnv("DATABASE_URL", "file:chat2geo.db?cache=shared&mode=rwc"),
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_BASE_URL", "https://api.groq.com/openai"),
		LLMModel:    getEnv("LLM_MODEL", "llama-3.1-70b-versatile"),
		LLMTimeout:  time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		DevToken:    getEnv("DEV_TOKEN", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
