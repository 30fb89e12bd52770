package service

import (
	"context"
	"errors"

	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

// Guard gates item access on ownership. Every call reloads the item, so an
// ownership decision is never reused across requests.
type Guard struct {
	items *ItemService
	log   logging.Logger
}

func NewGuard(items *ItemService, log logging.Logger) *Guard {
	return &Guard{items: items, log: log.With("component", "guard")}
}

// Authorize returns the item when callerID owns it. Missing items, foreign
// items and lookup failures all return ErrNotAuthorized.
func (g *Guard) Authorize(ctx context.Context, callerID, itemID string) (*model.Item, error) {
	if callerID == "" || itemID == "" {
		return nil, ErrNotAuthorized
	}

	item, err := g.items.FindByID(ctx, itemID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			g.log.Warn(ctx, "authorization lookup failed", "item_id", itemID, "caller", callerID, "error", err)
		}
		return nil, ErrNotAuthorized
	}
	if !item.OwnedBy(callerID) {
		g.log.Warn(ctx, "access denied", "item_id", itemID, "caller", callerID)
		return nil, ErrNotAuthorized
	}
	return item, nil
}

func (g *Guard) Get(ctx context.Context, callerID, itemID string) (*model.Item, error) {
	return g.Authorize(ctx, callerID, itemID)
}

func (g *Guard) Update(ctx context.Context, callerID, itemID, name, description string, quantity int) error {
	if _, err := g.Authorize(ctx, callerID, itemID); err != nil {
		return err
	}
	return g.items.Update(ctx, itemID, name, description, quantity)
}

func (g *Guard) Delete(ctx context.Context, callerID, itemID string) error {
	if _, err := g.Authorize(ctx, callerID, itemID); err != nil {
		return err
	}
	return g.items.Delete(ctx, itemID)
}
