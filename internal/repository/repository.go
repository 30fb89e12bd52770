// Package repository defines the storage contracts shared by every backend
// (postgres, dynamo, memory) and the error taxonomy they report.
//
// Backends never return raw driver errors. A missing record is ErrNotFound,
// a violated uniqueness constraint is ErrConflict and anything else is
// wrapped with ErrStorage, so callers can match with errors.Is.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fsanano/stockroom/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record conflicts with an existing one")
	ErrStorage  = errors.New("storage failure")
)

// StorageError wraps a driver error so that it matches ErrStorage while keeping
// the original cause reachable through errors.Is / errors.As.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserEmail(ctx context.Context, id, email string, updatedAt time.Time) error
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id string) (*model.Item, error)
	// ListItemsByOwner returns items ordered by creation time, then id.
	ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error)
	// SearchItemsByOwner matches term as a case-insensitive literal substring of the name.
	SearchItemsByOwner(ctx context.Context, ownerID, term string) ([]model.Item, error)
	// UpdateItem writes Name, Description, Quantity and UpdatedAt. The owner is never changed.
	UpdateItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, id string) error
}

// Store is the process-wide handle created at startup and closed on shutdown.
type Store interface {
	UserRepository
	ItemRepository
	Ping(ctx context.Context) error
	Close() error
}

// NameMatches is the in-process search predicate used by backends that cannot
// express a case-insensitive substring query natively.
func NameMatches(name, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(term))
}

// SortItems orders items by creation time, breaking ties by id.
func SortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
}
