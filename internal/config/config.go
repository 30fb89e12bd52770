package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverDynamoDB = "dynamodb"
	DriverMemory   = "memory"
)

type Config struct {
	ServerPort  string
	StoreDriver string
	DatabaseURL string
	LogLevel    string

	Session struct {
		Secret       string
		TTL          time.Duration
		SecureCookie bool
	}

	DynamoDB struct {
		Region           string
		Endpoint         string
		UsersTable       string
		ItemsTable       string
		OwnerItemsTable  string
		ConstraintsTable string
	}
}

// Load reads the configuration from the environment, after loading a .env
// file if one exists.
func Load() (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		ServerPort:  withDefault(getenv("SERVER_PORT"), "8080"),
		StoreDriver: strings.ToLower(withDefault(getenv("STORE_DRIVER"), DriverPostgres)),
		DatabaseURL: getenv("DATABASE_URL"),
		LogLevel:    withDefault(getenv("LOG_LEVEL"), "info"),
	}

	switch cfg.StoreDriver {
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set")
		}
	case DriverDynamoDB, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be one of %s, %s, %s; got %q",
			DriverPostgres, DriverDynamoDB, DriverMemory, cfg.StoreDriver)
	}

	cfg.Session.Secret = getenv("SESSION_SECRET")
	if cfg.Session.Secret == "" && cfg.StoreDriver != DriverMemory {
		return nil, fmt.Errorf("SESSION_SECRET must be set")
	}

	ttl, err := time.ParseDuration(withDefault(getenv("SESSION_TTL"), "24h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}
	cfg.Session.TTL = ttl

	if v := getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.Session.SecureCookie = secure
	}

	cfg.DynamoDB.Region = getenv("AWS_REGION")
	cfg.DynamoDB.Endpoint = getenv("DYNAMODB_ENDPOINT")
	cfg.DynamoDB.UsersTable = getenv("DYNAMODB_USERS_TABLE")
	cfg.DynamoDB.ItemsTable = getenv("DYNAMODB_ITEMS_TABLE")
	cfg.DynamoDB.OwnerItemsTable = getenv("DYNAMODB_OWNER_ITEMS_TABLE")
	cfg.DynamoDB.ConstraintsTable = getenv("DYNAMODB_CONSTRAINTS_TABLE")

	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
