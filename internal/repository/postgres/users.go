package postgres

import (
	"context"
	"time"

	"fsanano/stockroom/internal/model"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

// CreateUser inserts a user. Duplicate usernames or emails are rejected by
// the unique constraints and reported as repository.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	return mapError("create user", err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "get user", `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUser(ctx, "get user by username", `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUser(ctx, "get user by email", `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Store) getUser(ctx context.Context, op, query string, arg string) (*model.User, error) {
	var u model.User
	err := s.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapError(op, err)
	}
	return &u, nil
}

func (s *Store) UpdateUserEmail(ctx context.Context, id, email string, updatedAt time.Time) error {
	tag, err := s.db.Exec(ctx, "UPDATE users SET email = $1, updated_at = $2 WHERE id = $3", email, updatedAt, id)
	return expectOne("update user email", tag, err)
}
