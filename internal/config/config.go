package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MigrationsPath  string
}

type Config struct {
	App struct {
		Port       string
		SessionKey string
	}
	Postgres PostgresConfig
}

// Load reads configuration from the environment, optionally seeded from
// a .env file. Missing database variables are an error rather than a
// silent default.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")
	cfg.App.SessionKey = os.Getenv("SESSION_KEY")
	if cfg.App.SessionKey == "" {
		return nil, fmt.Errorf("SESSION_KEY is required")
	}

	for _, v := range []struct {
		dst  *string
		name string
	}{
		{&cfg.Postgres.Host, "DB_HOST"},
		{&cfg.Postgres.Port, "DB_PORT"},
		{&cfg.Postgres.User, "DB_USER"},
		{&cfg.Postgres.Password, "DB_PASSWORD"},
		{&cfg.Postgres.DBName, "DB_NAME"},
	} {
		*v.dst = os.Getenv(v.name)
		if *v.dst == "" {
			return nil, fmt.Errorf("%s is required", v.name)
		}
	}

	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getEnv("MIGRATIONS_PATH", "migrations")
	cfg.Postgres.MaxConns = 10
	cfg.Postgres.MinConns = 2
	cfg.Postgres.MaxConnLifetime = 30 * time.Minute

	return cfg, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
