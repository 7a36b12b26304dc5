package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string
	// "postgres" or "memory"
	Store string

	// signing key for access tokens
	SecretKey string

	AdminUsername string
	AdminPassword string
	AdminEmail    string
	AdminFullName string

	CORSOrigins []string

	LogLevel string

	OTELEndpoint    string
	OTELServiceName string
	OTELSampleRatio float64

	DBMaxConns int32

	MigrateOnStart         bool
	CategoryCacheTTL       time.Duration
	AuthRateLimitPerMinute int
	MaxBodyBytes           int64
}

// Load reads configuration from the process environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),
		Store: strings.ToLower(getEnv("STORE", "postgres")),

		SecretKey: firstNonEmpty(os.Getenv("SECRET_KEY"), os.Getenv("secretKey")),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@bookrental.local"),
		AdminFullName: getEnv("ADMIN_FULL_NAME", "Library Admin"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		LogLevel: os.Getenv("LOG_LEVEL"),

		OTELEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELServiceName: getEnv("OTEL_SERVICE_NAME", "bookrental-api"),
		OTELSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", 1),

		DBMaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),

		MigrateOnStart:         getEnvBool("MIGRATE_ON_START", true),
		CategoryCacheTTL:       time.Duration(getEnvInt("CATEGORY_CACHE_TTL_SECONDS", 30)) * time.Second,
		AuthRateLimitPerMinute: getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 20),
		MaxBodyBytes:           int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "bookrental")
	pass := getEnv("DB_PASSWORD", "bookrental")
	name := getEnv("DB_NAME", "bookrental")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout bounds a single store call. A nil parent means Background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid float env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
