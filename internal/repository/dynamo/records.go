package dynamo

import (
	"time"

	"fsanano/stockroom/internal/model"
)

// userRecord is the persisted shape of a user.
type userRecord struct {
	ID           string     `dynamodbav:"id"`
	Username     string     `dynamodbav:"username"`
	Email        string     `dynamodbav:"email"`
	PasswordHash string     `dynamodbav:"password_hash"`
	CreatedAt    time.Time  `dynamodbav:"created_at"`
	UpdatedAt    *time.Time `dynamodbav:"updated_at,omitempty"`
}

// itemRecord is the persisted shape of an item.
type itemRecord struct {
	ID          string     `dynamodbav:"id"`
	Name        string     `dynamodbav:"name"`
	Description string     `dynamodbav:"description"`
	Quantity    int        `dynamodbav:"quantity"`
	UserID      string     `dynamodbav:"user_id"`
	CreatedAt   time.Time  `dynamodbav:"created_at"`
	UpdatedAt   *time.Time `dynamodbav:"updated_at,omitempty"`
}

// constraintRecord reserves a unique value for a user.
type constraintRecord struct {
	PK     string `dynamodbav:"pk"`
	UserID string `dynamodbav:"user_id"`
}

func usernameKey(username string) string { return "username#" + username }
func emailKey(email string) string       { return "email#" + email }

func fromUser(u *model.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func fromItem(it *model.Item) itemRecord {
	return itemRecord{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Quantity:    it.Quantity,
		UserID:      it.UserID,
		CreatedAt:   it.CreatedAt.UTC(),
		UpdatedAt:   it.UpdatedAt,
	}
}

func (r itemRecord) toModel() model.Item {
	return model.Item{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Quantity:    r.Quantity,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
