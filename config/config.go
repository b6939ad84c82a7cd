// ABOUTME: Configuration loader for backend service
// ABOUTME: Loads settings from environment variables (with optional .env file) and validates them

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	AuthMode           string   // disabled, optional, required (default: required)
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)
	CookieSecure       bool     // Set Secure flag on session cookies (default: true)
	CacheTTL           int      // seconds, default for general cache
	CatalogTTL         int      // seconds, for the request-type catalog (default 60s)

	// Database
	DBDSN      string // Postgres DSN (required)
	DBAllProxy string // optional ssh+socks5:// bastion for DB access

	// Identity provider
	IdPURL            string // base URL of the OAuth identity provider (required)
	OAuthClientID     string
	OAuthClientSecret string
	IdPSkipVerify     bool // explicit opt-in for insecure connections

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitAuth    int  // Requests per minute for auth endpoints (default: 5)
	RateLimitRefresh int  // Requests per minute for refresh endpoint (default: 10)
	RateLimitWrite   int  // Requests per minute for write endpoints (default: 30)
	RateLimitDefault int  // Requests per minute for all other endpoints (default: 100)
}

func Load() (*Config, error) {
	// Load .env if present; plain environment variables win otherwise
	if err := godotenv.Load(".env"); err == nil {
		slog.Info("Loaded configuration from .env file")
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AuthMode:           getEnv("AUTH_MODE", "required"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),
		CacheTTL:           getEnvInt("CACHE_TTL", 300),
		CatalogTTL:         getEnvInt("CATALOG_CACHE_TTL", 60),

		DBDSN:      os.Getenv("DB_DSN"),
		DBAllProxy: os.Getenv("DB_ALL_PROXY"),

		IdPURL:            ensureScheme(os.Getenv("IDP_URL")),
		OAuthClientID:     getEnv("OAUTH_CLIENT_ID", "lettertrack"),
		OAuthClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		IdPSkipVerify:     getEnvBool("IDP_SKIP_SSL_VALIDATION", false),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitRefresh: getEnvInt("RATE_LIMIT_REFRESH", 10),
		RateLimitWrite:   getEnvInt("RATE_LIMIT_WRITE", 30),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),
	}

	// Validate required fields
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required")
	}
	if cfg.IdPURL == "" {
		return nil, fmt.Errorf("IDP_URL is required")
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_REFRESH", cfg.RateLimitRefresh},
		{"RATE_LIMIT_WRITE", cfg.RateLimitWrite},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
