package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":   "postgres://localhost/stockroom",
		"SESSION_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.False(t, cfg.Session.SecureCookie)
}

func TestFromEnv_DynamoDB(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"STORE_DRIVER":               "DynamoDB",
		"SESSION_SECRET":             "s3cret",
		"SESSION_TTL":                "30m",
		"COOKIE_SECURE":              "true",
		"AWS_REGION":                 "eu-west-1",
		"DYNAMODB_ENDPOINT":          "http://localhost:8000",
		"DYNAMODB_ITEMS_TABLE":       "stock_items",
		"DYNAMODB_OWNER_ITEMS_TABLE": "stock_owner_items",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverDynamoDB, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Session.SecureCookie)
	assert.Equal(t, "eu-west-1", cfg.DynamoDB.Region)
	assert.Equal(t, "http://localhost:8000", cfg.DynamoDB.Endpoint)
	assert.Equal(t, "stock_items", cfg.DynamoDB.ItemsTable)
	assert.Equal(t, "stock_owner_items", cfg.DynamoDB.OwnerItemsTable)
	assert.Empty(t, cfg.DynamoDB.UsersTable)
}

func TestFromEnv_MemoryAllowsEmptySecret(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"STORE_DRIVER": "memory"}))
	require.NoError(t, err)
	assert.Empty(t, cfg.Session.Secret)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := map[string]map[string]string{
		"postgres without url":    {"SESSION_SECRET": "s"},
		"missing secret":          {"DATABASE_URL": "postgres://x"},
		"unknown driver":          {"STORE_DRIVER": "mongo", "SESSION_SECRET": "s"},
		"bad ttl":                 {"STORE_DRIVER": "memory", "SESSION_TTL": "forever"},
		"negative ttl":            {"STORE_DRIVER": "memory", "SESSION_TTL": "-1h"},
		"bad cookie secure value": {"STORE_DRIVER": "memory", "COOKIE_SECURE": "maybe"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}
