// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port string

	Driver      string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	MaxConns    int32
	MinConns    int32
	SQLitePath  string

	LogLevel  string
	LogFormat string

	CORSOrigin string

	S3 S3Config
}

// S3Config is empty when snapshot uploads are disabled.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

func (s S3Config) Enabled() bool {
	return s.Endpoint != "" && s.AccessKeyID != "" && s.SecretAccessKey != ""
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Port:        get("PORT", "6000"),
		Driver:      strings.ToLower(get("DB_DRIVER", DriverPostgres)),
		DatabaseURL: get("DATABASE_URL", ""),
		DBHost:      get("DB_HOST", "localhost"),
		DBPort:      get("DB_PORT", "5432"),
		DBUser:      get("DB_USER", ""),
		DBPassword:  getenv("DB_PASSWORD"),
		DBName:      get("DB_NAME", ""),
		SQLitePath:  get("SQLITE_PATH", "items.db"),
		LogLevel:    get("LOG_LEVEL", "info"),
		LogFormat:   get("LOG_FORMAT", "text"),
		CORSOrigin:  get("CORS_ORIGIN", ""),
		S3: S3Config{
			Endpoint:        get("S3_ENDPOINT", ""),
			Region:          get("S3_REGION", "auto"),
			Bucket:          get("S3_BUCKET", "items-archive"),
			AccessKeyID:     get("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: get("S3_SECRET_ACCESS_KEY", ""),
		},
	}

	switch cfg.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.Driver)
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return Config{}, fmt.Errorf("PORT: %w", err)
	}

	var err error
	if cfg.MaxConns, err = parseConns(get("DB_MAX_CONNS", "0")); err != nil {
		return Config{}, fmt.Errorf("DB_MAX_CONNS: %w", err)
	}
	if cfg.MinConns, err = parseConns(get("DB_MIN_CONNS", "0")); err != nil {
		return Config{}, fmt.Errorf("DB_MIN_CONNS: %w", err)
	}
	if cfg.MaxConns > 0 && cfg.MinConns > cfg.MaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	return cfg, nil
}

func parseConns(v string) (int32, error) {
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative, got %d", n)
	}
	return int32(n), nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// PostgresURL returns DATABASE_URL when set, otherwise a URL assembled
// from the DB_* settings.
func (c Config) PostgresURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	switch {
	case c.DBUser != "" && c.DBPassword != "":
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	case c.DBUser != "":
		u.User = url.User(c.DBUser)
	}
	return u.String()
}

// MaskURL hides the password part of a connection URL for logging.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxx")
	return strings.Replace(u.String(), ":xxx@", ":***@", 1)
}
