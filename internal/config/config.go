package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingEnv = errors.New("missing required environment variable")

type Config struct {
	Port         string
	AllowOrigins []string
	TrustProxy   bool

	DatabaseURL       string
	DBDriver          string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBQueryTimeout    time.Duration
	RunMigrations     bool

	JWTSecret        string
	JWTExpiresIn     time.Duration
	PasswordResetTTL time.Duration
	ResetURLBase     string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseTLS   bool

	RateLimitRedisAddr     string
	RateLimitRedisPassword string
	RateLimitRedisDB       int

	LogLevel        string
	LogFormat       string
	LogstashTCPAddr string
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	p := &parser{}
	cfg := Config{
		Port:         getenv("PORT", "8080"),
		AllowOrigins: splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		TrustProxy:   p.boolean("TRUST_PROXY", false),

		DatabaseURL:       p.required("DATABASE_URL"),
		DBDriver:          strings.ToLower(getenv("DB_DRIVER", "pgx")),
		DBMaxOpenConns:    p.integer("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    p.integer("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: p.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		DBQueryTimeout:    p.duration("DB_QUERY_TIMEOUT", 5*time.Second),
		RunMigrations:     p.boolean("RUN_MIGRATIONS", true),

		JWTSecret:        p.required("JWT_SECRET"),
		JWTExpiresIn:     p.duration("JWT_EXPIRES_IN", 7*24*time.Hour),
		PasswordResetTTL: p.duration("PASSWORD_RESET_TTL", time.Hour),
		ResetURLBase:     getenv("RESET_URL_BASE", ""),

		SMTPHost:     getenv("SMTP_HOST", ""),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: getenv("SMTP_USERNAME", ""),
		SMTPPassword: getenv("SMTP_PASSWORD", ""),
		SMTPFrom:     getenv("SMTP_FROM", ""),
		SMTPUseTLS:   p.boolean("SMTP_USE_TLS", false),

		RateLimitRedisAddr:     getenv("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:       p.integer("RATE_LIMIT_REDIS_DB", 0),

		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
	}
	if cfg.DBDriver != "pgx" && cfg.DBDriver != "postgres" {
		p.fail(fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}
	if cfg.SMTPHost != "" {
		p.absoluteURL("RESET_URL_BASE", cfg.ResetURLBase)
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parser collects every problem so a single run reports all of them.
type parser struct {
	errs []error
}

func (p *parser) fail(err error) {
	p.errs = append(p.errs, err)
}

func (p *parser) required(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		p.fail(fmt.Errorf("%w: %s", ErrMissingEnv, key))
	}
	return v
}

// absoluteURL rejects relative links, which mail clients cannot open.
func (p *parser) absoluteURL(key, raw string) {
	if strings.TrimSpace(raw) == "" {
		p.fail(fmt.Errorf("%w: %s (required when SMTP_HOST is set)", ErrMissingEnv, key))
		return
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		p.fail(fmt.Errorf("%s: must be an absolute http(s) URL, got %q", key, raw))
	}
}

func (p *parser) integer(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		p.fail(fmt.Errorf("%s: invalid non-negative integer %q", key, raw))
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		p.fail(fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return v
}

func (p *parser) boolean(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		p.fail(fmt.Errorf("%s: invalid boolean %q", key, raw))
		return def
	}
	return v
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
