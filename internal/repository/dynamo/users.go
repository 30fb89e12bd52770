package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

// CreateUser writes the user together with its username and email
// constraint rows in one transaction.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	item, err := attributevalue.MarshalMap(fromUser(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	usernameRow, err := attributevalue.MarshalMap(constraintRecord{PK: usernameKey(user.Username), UserID: user.ID})
	if err != nil {
		return fmt.Errorf("marshal constraint: %w", err)
	}
	emailRow, err := attributevalue.MarshalMap(constraintRecord{PK: emailKey(user.Email), UserID: user.ID})
	if err != nil {
		return fmt.Errorf("marshal constraint: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.config.UsersTable),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(s.config.ConstraintsTable),
				Item:                usernameRow,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(s.config.ConstraintsTable),
				Item:                emailRow,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
		},
	})

	return mapTransactionError("create user", err, func(i int) error {
		switch i {
		case 1:
			return fmt.Errorf("username %q: %w", user.Username, repository.ErrConflict)
		case 2:
			return fmt.Errorf("email %q: %w", user.Email, repository.ErrConflict)
		default:
			return fmt.Errorf("user id %q: %w", user.ID, repository.ErrConflict)
		}
	})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.UsersTable),
		Key:            stringKey("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, repository.StorageError("get user", err)
	}
	if out.Item == nil {
		return nil, repository.ErrNotFound
	}

	var rec userRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, repository.StorageError("unmarshal user", err)
	}
	return rec.toModel(), nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getUserByConstraint(ctx, usernameKey(username))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getUserByConstraint(ctx, emailKey(email))
}

func (s *Store) getUserByConstraint(ctx context.Context, pk string) (*model.User, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.ConstraintsTable),
		Key:            stringKey("pk", pk),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, repository.StorageError("get constraint", err)
	}
	if out.Item == nil {
		return nil, repository.ErrNotFound
	}

	var rec constraintRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, repository.StorageError("unmarshal constraint", err)
	}
	return s.GetUserByID(ctx, rec.UserID)
}

// UpdateUserEmail moves the email constraint row and updates the user in one
// transaction.
func (s *Store) UpdateUserEmail(ctx context.Context, id, email string, updatedAt time.Time) error {
	current, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	ts, err := attributevalue.Marshal(updatedAt.UTC())
	if err != nil {
		return fmt.Errorf("marshal timestamp: %w", err)
	}

	update := &types.Update{
		TableName:           aws.String(s.config.UsersTable),
		Key:                 stringKey("id", id),
		UpdateExpression:    aws.String("SET #email = :email, #updated_at = :updated_at"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id":         "id",
			"#email":      "email",
			"#updated_at": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":email":      &types.AttributeValueMemberS{Value: email},
			":updated_at": ts,
		},
	}

	if current.Email == email {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 update.TableName,
			Key:                       update.Key,
			UpdateExpression:          update.UpdateExpression,
			ConditionExpression:       update.ConditionExpression,
			ExpressionAttributeNames:  update.ExpressionAttributeNames,
			ExpressionAttributeValues: update.ExpressionAttributeValues,
		})
		return mapConditionError("update user email", err, repository.ErrNotFound)
	}

	newRow, err := attributevalue.MarshalMap(constraintRecord{PK: emailKey(email), UserID: id})
	if err != nil {
		return fmt.Errorf("marshal constraint: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: update},
			{Put: &types.Put{
				TableName:           aws.String(s.config.ConstraintsTable),
				Item:                newRow,
				ConditionExpression: aws.String("attribute_not_exists(pk)"),
			}},
			{Delete: &types.Delete{
				TableName:           aws.String(s.config.ConstraintsTable),
				Key:                 stringKey("pk", emailKey(current.Email)),
				ConditionExpression: aws.String("user_id = :uid"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":uid": &types.AttributeValueMemberS{Value: id},
				},
			}},
		},
	})

	return mapTransactionError("update user email", err, func(i int) error {
		switch i {
		case 0:
			return repository.ErrNotFound
		case 1:
			return fmt.Errorf("email %q: %w", email, repository.ErrConflict)
		default:
			return fmt.Errorf("email %q changed concurrently: %w", current.Email, repository.ErrConflict)
		}
	})
}
