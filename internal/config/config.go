// internal/config/config.go
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the server's runtime settings, sourced from the
// environment with .env as a development convenience.
type Config struct {
	Port        string
	DatabaseURL string
	RedisHost   string
	RedisPort   string
	LogLevel    string
	BotDelayMS  int
}

// Load reads .env when present and builds the Config from the
// environment. Missing values fall back to development defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisHost:   getEnv("REDIS_HOST", "localhost"),
		RedisPort:   getEnv("REDIS_PORT", "6379"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		BotDelayMS:  getEnvInt("BOT_DELAY_MS", 1000),
	}
	return cfg
}

// ApplyLogLevel sets the global logrus level from the config.
func (c Config) ApplyLogLevel() {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL %q, defaulting to info", c.LogLevel)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logrus.Warnf("Invalid integer for %s: %q", key, v)
		return fallback
	}
	return n
}
