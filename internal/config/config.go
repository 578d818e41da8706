// Package config loads process configuration from the environment, with an
// optional .env file for development.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tasklane.dev/internal/auth"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Server ServerConfig
	JWT    JWTConfig
	Auth   AuthConfig
	Store  StoreConfig
	HTTP   HTTPConfig

	LogLevel        string
	ShutdownTimeout time.Duration
}

type ServerConfig struct {
	Host      string
	Port      int
	APIPrefix string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type AuthConfig struct {
	BcryptCost    int
	RoleSource    auth.RoleSource
	PruneInterval time.Duration
}

type StoreConfig struct {
	Driver         string
	DatabaseURL    string
	MongoURI       string
	MongoDatabase  string
	MigrateOnStart bool
}

type HTTPConfig struct {
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads envFile when given (it must exist), otherwise a .env in the
// working directory if present, then builds the Config from the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}
	return FromEnv()
}

// FromEnv builds the Config from the current environment only.
func FromEnv() (*Config, error) {
	var p parser
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("HOST", "0.0.0.0"),
			Port:      p.int("PORT", 3001),
			APIPrefix: "/" + strings.Trim(getEnv("API_PREFIX", "/api"), "/"),
		},
		JWT: JWTConfig{
			AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:     p.duration("JWT_ACCESS_TTL", auth.DefaultAccessTTL),
			RefreshTTL:    p.duration("JWT_REFRESH_TTL", auth.DefaultRefreshTTL),
			Issuer:        getEnv("JWT_ISSUER", "tasklane"),
		},
		Auth: AuthConfig{
			BcryptCost:    p.int("BCRYPT_COST", auth.MinPasswordCost),
			RoleSource:    auth.RoleSource(strings.ToLower(getEnv("AUTH_ROLE_SOURCE", string(auth.RoleFromToken)))),
			PruneInterval: p.duration("REVOCATION_PRUNE_INTERVAL", 10*time.Minute),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
			DatabaseURL:    os.Getenv("DATABASE_URL"),
			MongoURI:       os.Getenv("MONGODB_URI"),
			MongoDatabase:  getEnv("MONGODB_DATABASE", "tasklane"),
			MigrateOnStart: p.bool("MIGRATE_ON_START", false),
		},
		HTTP: HTTPConfig{
			CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
			RateLimitRPS:   p.float("RATE_LIMIT_RPS", 10),
			RateLimitBurst: p.int("RATE_LIMIT_BURST", 20),
			MaxBodyBytes:   int64(p.int("MAX_BODY_BYTES", 1<<20)),
		},
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	if c.Auth.BcryptCost < auth.MinPasswordCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be at least %d", auth.MinPasswordCost))
	}
	switch c.Auth.RoleSource {
	case auth.RoleFromToken, auth.RoleFromStore:
	default:
		errs = append(errs, fmt.Errorf("AUTH_ROLE_SOURCE %q: want token or store", c.Auth.RoleSource))
	}
	if c.Auth.PruneInterval < 0 {
		errs = append(errs, errors.New("REVOCATION_PRUNE_INTERVAL must not be negative"))
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	case DriverMongo:
		if c.Store.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required for the mongo driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q: want postgres, mongo or memory", c.Store.Driver))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Server.Port))
	}
	if c.HTTP.RateLimitRPS <= 0 || c.HTTP.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("MAX_BODY_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parser keeps the first conversion error so FromEnv reads straight through.
type parser struct{ err error }

func (p *parser) fail(key, val string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return f
}

func (p *parser) bool(key string, fallback bool) bool {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return b
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	val := getEnv(key, "")
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return d
}
