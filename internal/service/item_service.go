package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

// ItemService is the item store. It performs no ownership checks; callers
// acting on behalf of a user go through Guard.
type ItemService struct {
	repo repository.ItemRepository
	log  logging.Logger
	now  func() time.Time
}

func NewItemService(repo repository.ItemRepository, log logging.Logger) *ItemService {
	return &ItemService{repo: repo, log: log.With("component", "items"), now: time.Now}
}

// ListByOwner returns the owner's items, oldest first.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	items, err := s.repo.ListItemsByOwner(ctx, ownerID)
	return items, s.logFault(ctx, "list items", err, "owner", ownerID)
}

func (s *ItemService) FindByID(ctx context.Context, id string) (*model.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	return item, s.logFault(ctx, "find item", err, "item_id", id)
}

func (s *ItemService) Create(ctx context.Context, name, description string, quantity int, ownerID string) (*model.Item, error) {
	if err := validateItem(name, quantity); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, invalid("owner is required")
	}

	item := &model.Item{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Quantity:    quantity,
		UserID:      ownerID,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, s.logFault(ctx, "create item", err, "owner", ownerID)
	}

	s.log.Info(ctx, "item created", "item_id", item.ID, "owner", ownerID)
	return item, nil
}

// Update replaces name, description and quantity. The owner is unchanged.
func (s *ItemService) Update(ctx context.Context, id, name, description string, quantity int) error {
	if err := validateItem(name, quantity); err != nil {
		return err
	}

	now := s.now().UTC()
	err := s.repo.UpdateItem(ctx, &model.Item{
		ID:          id,
		Name:        name,
		Description: description,
		Quantity:    quantity,
		UpdatedAt:   &now,
	})
	if err != nil {
		return s.logFault(ctx, "update item", err, "item_id", id)
	}

	s.log.Info(ctx, "item updated", "item_id", id)
	return nil
}

func (s *ItemService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return s.logFault(ctx, "delete item", err, "item_id", id)
	}

	s.log.Info(ctx, "item deleted", "item_id", id)
	return nil
}

// SearchByOwner returns the owner's items whose name contains term, ignoring
// case. An empty term returns every item.
func (s *ItemService) SearchByOwner(ctx context.Context, ownerID, term string) ([]model.Item, error) {
	items, err := s.repo.SearchItemsByOwner(ctx, ownerID, term)
	return items, s.logFault(ctx, "search items", err, "owner", ownerID)
}

func (s *ItemService) logFault(ctx context.Context, op string, err error, args ...any) error {
	if err != nil && errors.Is(err, repository.ErrStorage) {
		s.log.Error(ctx, fmt.Sprintf("%s failed", op), append(args, "error", err)...)
	}
	return err
}
