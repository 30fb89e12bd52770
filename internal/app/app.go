// Package app wires the store, services and HTTP handler into one value
// shared by the server, Lambda and CLI entry points.
package app

import (
	"context"
	"crypto/rand"
	"fmt"

	"fsanano/stockroom/internal/auth"
	"fsanano/stockroom/internal/config"
	"fsanano/stockroom/internal/handler"
	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/repository"
	"fsanano/stockroom/internal/service"
	"fsanano/stockroom/internal/storage"
)

type App struct {
	Store    repository.Store
	Users    *service.UserService
	Items    *service.ItemService
	Guard    *service.Guard
	Sessions *auth.Sessions
	Handler  *handler.Handler
}

// New opens the configured store and builds the App around it.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a, err := Build(ctx, store, cfg, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

// Build assembles the App on an already opened store.
func Build(ctx context.Context, store repository.Store, cfg *config.Config, log logging.Logger) (*App, error) {
	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		log.Warn(ctx, "SESSION_SECRET not set; sessions will not survive a restart")
	}

	sessions := auth.NewSessions(secret, cfg.Session.TTL, auth.WithSecureCookie(cfg.Session.SecureCookie))
	users := service.NewUserService(store, log)
	items := service.NewItemService(store, log)
	guard := service.NewGuard(items, log)

	h, err := handler.NewHandler(handler.Deps{
		Users:    users,
		Items:    items,
		Guard:    guard,
		Sessions: sessions,
		Flashes:  handler.NewFlashStore(secret, cfg.Session.SecureCookie),
		Store:    store,
		Log:      log,
	})
	if err != nil {
		return nil, err
	}

	return &App{
		Store:    store,
		Users:    users,
		Items:    items,
		Guard:    guard,
		Sessions: sessions,
		Handler:  h,
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}
