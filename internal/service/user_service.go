package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"fsanano/stockroom/internal/auth"
	"fsanano/stockroom/internal/logging"
	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

// UserService is the credential store: user lookup, creation and password
// verification.
type UserService struct {
	repo repository.UserRepository
	log  logging.Logger
	now  func() time.Time
}

func NewUserService(repo repository.UserRepository, log logging.Logger) *UserService {
	return &UserService{repo: repo, log: log.With("component", "users"), now: time.Now}
}

func (s *UserService) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	return u, s.logFault(ctx, "find user by id", err)
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.GetUserByUsername(ctx, username)
	return u, s.logFault(ctx, "find user by username", err)
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	return u, s.logFault(ctx, "find user by email", err)
}

// Create hashes password and stores a new user. A username or email already
// in use yields an error matching repository.ErrConflict.
func (s *UserService) Create(ctx context.Context, username, email, password string) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, s.logFault(ctx, "create user", err)
	}

	s.log.Info(ctx, "user created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Verify reports whether password matches the user's stored hash.
func (s *UserService) Verify(user *model.User, password string) bool {
	if user == nil {
		return false
	}
	return auth.CheckPassword(user.PasswordHash, password)
}

func (s *UserService) UpdateEmail(ctx context.Context, id, email string) error {
	err := s.repo.UpdateUserEmail(ctx, id, email, s.now().UTC())
	return s.logFault(ctx, "update user email", err)
}

// Register validates the input, checks that neither the username nor the
// email is taken, then creates the user. The two lookups run concurrently.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	var usernameTaken, emailTaken bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		usernameTaken, err = s.exists(gctx, func(ctx context.Context) error {
			_, err := s.FindByUsername(ctx, username)
			return err
		})
		return err
	})
	g.Go(func() error {
		var err error
		emailTaken, err = s.exists(gctx, func(ctx context.Context) error {
			_, err := s.FindByEmail(ctx, email)
			return err
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	switch {
	case usernameTaken:
		return nil, ErrUsernameTaken
	case emailTaken:
		return nil, ErrEmailTaken
	}

	user, err := s.Create(ctx, username, email, password)
	if errors.Is(err, repository.ErrConflict) {
		// Lost a race with a concurrent registration.
		taken, err := s.exists(ctx, func(ctx context.Context) error {
			_, err := s.FindByUsername(ctx, username)
			return err
		})
		switch {
		case err != nil:
			return nil, err
		case taken:
			return nil, ErrUsernameTaken
		}
		return nil, ErrEmailTaken
	}
	return user, err
}

// Authenticate returns the user when username and password match. Unknown
// users and wrong passwords both yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !s.Verify(user, password) {
		s.log.Info(ctx, "login rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangeEmail updates the email of user id unless another user holds it.
func (s *UserService) ChangeEmail(ctx context.Context, id, email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	existing, err := s.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != id:
		return ErrEmailTaken
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return err
	}

	err = s.UpdateEmail(ctx, id, email)
	if errors.Is(err, repository.ErrConflict) {
		return ErrEmailTaken
	}
	return err
}

// exists runs lookup and reports whether it found a record.
func (s *UserService) exists(ctx context.Context, lookup func(context.Context) error) (bool, error) {
	err := lookup(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// logFault logs storage failures and passes every error through unchanged.
func (s *UserService) logFault(ctx context.Context, op string, err error) error {
	if err != nil && errors.Is(err, repository.ErrStorage) {
		s.log.Error(ctx, fmt.Sprintf("%s failed", op), "error", err)
	}
	return err
}
