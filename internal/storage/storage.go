// Package storage opens the repository.Store selected by configuration.
package storage

import (
	"context"
	"fmt"

	"fsanano/stockroom/internal/config"
	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/repository"
	"fsanano/stockroom/internal/repository/dynamo"
	"fsanano/stockroom/internal/repository/memory"
	"fsanano/stockroom/internal/repository/postgres"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

// Open connects to the configured backend and brings its schema up to date.
// The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg *config.Config, log logging.Logger) (repository.Store, error) {
	store, err := Connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if m, ok := store.(migrator); ok {
		if err := m.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		log.Info(ctx, "schema is up to date", "driver", cfg.StoreDriver)
	}
	return store, nil
}

// Connect opens the configured backend without creating or altering any
// table.
func Connect(ctx context.Context, cfg *config.Config, log logging.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "connected to postgres")
		return store, nil

	case config.DriverDynamoDB:
		store, err := dynamo.Connect(ctx, dynamo.ConnectOptions{
			Region:   cfg.DynamoDB.Region,
			Endpoint: cfg.DynamoDB.Endpoint,
		}, dynamo.Config{
			UsersTable:       cfg.DynamoDB.UsersTable,
			ItemsTable:       cfg.DynamoDB.ItemsTable,
			OwnerItemsTable:  cfg.DynamoDB.OwnerItemsTable,
			ConstraintsTable: cfg.DynamoDB.ConstraintsTable,
		})
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "connected to dynamodb", "region", cfg.DynamoDB.Region, "endpoint", cfg.DynamoDB.Endpoint)
		return store, nil

	case config.DriverMemory:
		log.Warn(ctx, "using in-memory store; data is lost on exit")
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
