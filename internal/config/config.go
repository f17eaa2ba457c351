package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

const devJWTSecret = "dev-only-secret-change-me"

type Config struct {
	Env   string
	Port  int
	Store string

	DBURL      string
	DBMaxConns int
	SQLitePath string

	JWTSecret           string
	JWTAccessTTLMinutes int

	AdminEmail    string
	AdminPassword string
	AdminName     string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	CORSOrigins     []string
	OTELEndpoint    string
	OTELSampleRatio float64
	MaxBodyBytes    int64
}

func (c Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads .env (if present), then the optional YAML file named by
// APP_CONFIG_FILE, then the process environment. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load()

	file, err := loadFile(os.Getenv("APP_CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	var errs []error

	env := getEnv("APP_ENV", file.Env, "dev")

	cfg := Config{
		Env:        env,
		Port:       getEnvInt("PORT", file.Port, 8080, &errs),
		Store:      strings.ToLower(getEnv("STORE", file.Store, StorePostgres)),
		DBURL:      buildDBURL(),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", file.DBMaxConns, 5, &errs),
		SQLitePath: getEnv("SQLITE_PATH", file.SQLitePath, "jobtrail.db"),

		JWTSecret:           getEnv("JWT_SECRET", "", ""),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", file.JWTAccessTTLMinutes, 24*60, &errs),

		AdminEmail:    getEnv("ADMIN_EMAIL", "", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", "", ""),
		AdminName:     getEnv("ADMIN_NAME", "", "Administrator"),

		RedisAddr:       getEnv("REDIS_ADDR", file.RedisAddr, ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", "", ""),
		RedisDB:         getEnvInt("REDIS_DB", file.RedisDB, 0, &errs),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", file.CacheTTLSeconds, 30, &errs),

		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", strings.Join(file.CORSOrigins, ","), "http://localhost:5173,http://localhost:3000")),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", file.OTELEndpoint, ""),
		OTELSampleRatio: getEnvFloat("OTEL_SAMPLE_RATIO", file.OTELSampleRatio, 1, &errs),
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", file.MaxBodyBytes, 1<<20, &errs)),
	}

	if cfg.JWTSecret == "" {
		if env == "dev" || env == "test" {
			cfg.JWTSecret = devJWTSecret
		} else {
			errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
		}
	}

	switch cfg.Store {
	case StorePostgres, StoreSQLite, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE must be one of postgres, sqlite, memory; got %q", cfg.Store))
	}

	if cfg.OTELSampleRatio < 0 || cfg.OTELSampleRatio > 1 {
		errs = append(errs, errors.New("OTEL_SAMPLE_RATIO must be between 0 and 1"))
	}

	if cfg.JWTAccessTTLMinutes <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TTL_MINUTES must be positive"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "", "127.0.0.1")
	port := getEnv("DB_PORT", "", "5432")
	user := getEnv("DB_USER", "", "jobtrail")
	pass := getEnv("DB_PASSWORD", "", "jobtrail")
	name := getEnv("DB_NAME", "", "jobtrail")
	ssl := getEnv("DB_SSLMODE", "", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// WithTimeout is a fresh deadline for work that must outlive a cancelled
// parent, such as shutdown.
func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fromFile, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}

	return fallback
}

func getEnvInt(key string, fromFile, fallback int, errs *[]error) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
			return fallback
		}

		return num
	}
	if fromFile != 0 {
		return fromFile
	}
	return fallback
}

func getEnvFloat(key string, fromFile, fallback float64, errs *[]error) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		return f
	}
	if fromFile != 0 {
		return fromFile
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
