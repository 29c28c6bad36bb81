package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "Items API"
	defaultAppEnv          = "development"
	defaultVersion         = "1.0.0"
	defaultPort            = "8000"
	defaultShutdownTimeout = 5 * time.Second
	defaultCORSOrigin      = "*"
	defaultWriteRateWindow = time.Minute
	defaultDBHost          = "db"
	defaultDBPort          = "5432"
	defaultDBUser          = "postgres"
	defaultDBPassword      = "postgres"
	defaultDBName          = "Test"
	defaultDBSSLMode       = "disable"
	defaultDBMaxConns      = int32(4)
	defaultDBConnLifetime  = 30 * time.Minute
	defaultDBConnIdleTime  = 5 * time.Minute
)

type Config struct {
	AppName         string
	AppEnv          string
	Version         string
	Debug           bool
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	WriteRateLimit  RateLimitConfig
	Database        DatabaseConfig
}

// RateLimitConfig is disabled when Requests is zero.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DSN returns URL when set, otherwise a postgres URL composed from the parts.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

func Load() (Config, error) {
	cfg := Config{
		AppName:         defaultAppName,
		AppEnv:          defaultAppEnv,
		Version:         defaultVersion,
		HTTPAddr:        ":" + defaultPort,
		ShutdownTimeout: defaultShutdownTimeout,
		CORSOrigins:     []string{defaultCORSOrigin},
		WriteRateLimit: RateLimitConfig{
			Window: defaultWriteRateWindow,
		},
		Database: DatabaseConfig{
			Host:            defaultDBHost,
			Port:            defaultDBPort,
			User:            defaultDBUser,
			Password:        defaultDBPassword,
			Name:            defaultDBName,
			SSLMode:         defaultDBSSLMode,
			MaxConns:        defaultDBMaxConns,
			MaxConnLifetime: defaultDBConnLifetime,
			MaxConnIdleTime: defaultDBConnIdleTime,
		},
	}

	if v := strings.TrimSpace(os.Getenv("APP_NAME")); v != "" {
		cfg.AppName = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_ENV")); v != "" {
		cfg.AppEnv = v
	}
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		cfg.Version = v
	}
	// Only the literal "true" enables debug; anything else leaves it off.
	cfg.Debug = strings.TrimSpace(os.Getenv("DEBUG")) == "true"
	if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return Config{}, errors.New("PORT must be a valid TCP port")
		}
		cfg.HTTPAddr = ":" + v
	}
	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("SHUTDOWN_TIMEOUT")); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("ITEMS_WRITE_RATE_LIMIT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, errors.New("ITEMS_WRITE_RATE_LIMIT must be a non-negative integer")
		}
		cfg.WriteRateLimit.Requests = n
	}
	if v := strings.TrimSpace(os.Getenv("ITEMS_WRITE_RATE_WINDOW")); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse ITEMS_WRITE_RATE_WINDOW: %w", err)
		}
		cfg.WriteRateLimit.Window = d
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.WriteRateLimit.Window <= 0 {
		cfg.WriteRateLimit.Window = defaultWriteRateWindow
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{defaultCORSOrigin}
	}

	if v := strings.TrimSpace(os.Getenv("POSTGRES_HOST")); v != "" {
		cfg.Database.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("POSTGRES_PORT")); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return Config{}, errors.New("POSTGRES_PORT must be an integer")
		}
		cfg.Database.Port = v
	}
	if v := strings.TrimSpace(os.Getenv("POSTGRES_USER")); v != "" {
		cfg.Database.User = v
	}
	if v, ok := os.LookupEnv("POSTGRES_PASSWORD"); ok {
		cfg.Database.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("POSTGRES_DB")); v != "" {
		cfg.Database.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("POSTGRES_SSLMODE")); v != "" {
		cfg.Database.SSLMode = v
	}
	cfg.Database.URL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("DATABASE_MAX_CONNS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, errors.New("DATABASE_MAX_CONNS must be a positive integer")
		}
		cfg.Database.MaxConns = int32(n)
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_MAX_CONN_LIFETIME")); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse DATABASE_MAX_CONN_LIFETIME: %w", err)
		}
		cfg.Database.MaxConnLifetime = d
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_MAX_CONN_IDLE_TIME")); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse DATABASE_MAX_CONN_IDLE_TIME: %w", err)
		}
		cfg.Database.MaxConnIdleTime = d
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty duration")
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}
