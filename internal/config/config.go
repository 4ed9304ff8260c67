package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRate           int // physics ticks per second
	SessionIdleMinutes int // idle window before a table session expires

	// Security
	JWTSecret    string
	AdminPINHash string // bcrypt hash of the admin PIN; empty disables admin routes
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		Environment: getEnv("APP_ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		TickRate:           getEnvInt("TICK_RATE", 60),
		SessionIdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 30),

		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
		AdminPINHash: getEnv("ADMIN_PIN_HASH", ""),
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
