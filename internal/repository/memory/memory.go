// Package memory is a process-local Store used for development and tests.
// It keeps the same uniqueness and not-found semantics as the real backends.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	users      map[string]model.User
	byUsername map[string]string
	byEmail    map[string]string

	items map[string]model.Item
	// order keeps item ids in insertion order.
	order []string

	closed bool
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:      make(map[string]model.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
		items:      make(map[string]model.Item),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return repository.StorageError("ping", errClosed)
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var errClosed = errors.New("memory store is closed")

func (s *Store) check(ctx context.Context, op string) error {
	if s.closed {
		return repository.StorageError(op, errClosed)
	}
	if err := ctx.Err(); err != nil {
		return repository.StorageError(op, err)
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "create user"); err != nil {
		return err
	}
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user id %q: %w", user.ID, repository.ErrConflict)
	}
	if _, ok := s.byUsername[user.Username]; ok {
		return fmt.Errorf("username %q: %w", user.Username, repository.ErrConflict)
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return fmt.Errorf("email %q: %w", user.Email, repository.ErrConflict)
	}

	s.users[user.ID] = *user
	s.byUsername[user.Username] = user.ID
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "get user"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "get user by username"); err != nil {
		return nil, err
	}
	id, ok := s.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "get user by email"); err != nil {
		return nil, err
	}
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *Store) UpdateUserEmail(ctx context.Context, id, email string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "update user email"); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if owner, taken := s.byEmail[email]; taken && owner != id {
		return fmt.Errorf("email %q: %w", email, repository.ErrConflict)
	}

	delete(s.byEmail, u.Email)
	u.Email = email
	u.UpdatedAt = &updatedAt
	s.users[id] = u
	s.byEmail[email] = id
	return nil
}

func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "create item"); err != nil {
		return err
	}
	if _, ok := s.items[item.ID]; ok {
		return fmt.Errorf("item id %q: %w", item.ID, repository.ErrConflict)
	}
	s.items[item.ID] = *item
	s.order = append(s.order, item.ID)
	return nil
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "get item"); err != nil {
		return nil, err
	}
	it, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &it, nil
}

func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	return s.SearchItemsByOwner(ctx, ownerID, "")
}

func (s *Store) SearchItemsByOwner(ctx context.Context, ownerID, term string) ([]model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx, "list items"); err != nil {
		return nil, err
	}
	items := []model.Item{}
	for _, id := range s.order {
		it := s.items[id]
		if it.UserID == ownerID && repository.NameMatches(it.Name, term) {
			items = append(items, it)
		}
	}
	repository.SortItems(items)
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "update item"); err != nil {
		return err
	}
	current, ok := s.items[item.ID]
	if !ok {
		return repository.ErrNotFound
	}
	current.Name = item.Name
	current.Description = item.Description
	current.Quantity = item.Quantity
	current.UpdatedAt = item.UpdatedAt
	s.items[item.ID] = current
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(ctx, "delete item"); err != nil {
		return err
	}
	if _, ok := s.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
