package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	CORSOrigins []string

	// InitialBalance seeds new accounts at signup, in minor units. A demo
	// deployment wants a non-zero float of funds; production sets 0.
	InitialBalance int64
	Currency       string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:        fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:   fallback(os.Getenv("JWT_ISSUER"), "payflow-backend"),
		CORSOrigins: parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		Currency:    fallback(os.Getenv("CURRENCY"), "INR"),
		LogLevel:    fallback(os.Getenv("LOG_LEVEL"), "info"),
		LogFormat:   fallback(os.Getenv("LOG_FORMAT"), "text"),
	}

	// Sessions last 7 days unless overridden.
	hours := fallback(os.Getenv("JWT_TTL_HOURS"), "168")
	if ttlHours, err := strconv.Atoi(hours); err == nil && ttlHours > 0 {
		cfg.JWTTTL = time.Duration(ttlHours) * time.Hour
	} else {
		cfg.JWTTTL = 168 * time.Hour
	}

	seed := fallback(os.Getenv("INITIAL_BALANCE_MINOR"), "10000")
	balance, err := strconv.ParseInt(seed, 10, 64)
	if err != nil || balance < 0 {
		return Config{}, fmt.Errorf("invalid INITIAL_BALANCE_MINOR value %q", seed)
	}
	cfg.InitialBalance = balance

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
