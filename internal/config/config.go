package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	JWKSURL     string // JWKS endpoint used to verify bearer tokens; empty = dev auth
	DevUserID   string // Owner used when JWKSURL is empty (dev only)
	CORSOrigins []string
	TablePrefix string
	LogDir      string // Empty = log to stdout only
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWKSURL:     getEnv("JWKS_URL", ""),
		DevUserID:   getEnv("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		TablePrefix: getTablePrefix(env),
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
	}
}

// IsDev reports whether the server runs in the dev environment
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

// getTablePrefix returns TABLE_PREFIX if set, otherwise one derived from env
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
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
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
