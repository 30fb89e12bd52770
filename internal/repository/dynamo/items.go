package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"fsanano/stockroom/internal/model"
	"fsanano/stockroom/internal/repository"
)

// CreateItem writes the item and its owner listing row in one transaction.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	av, err := attributevalue.MarshalMap(fromItem(item))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.config.ItemsTable),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(s.config.OwnerItemsTable),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			}},
		},
	})
	return mapTransactionError("create item", err, func(int) error {
		return fmt.Errorf("item id %q: %w", item.ID, repository.ErrConflict)
	})
}

func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.ItemsTable),
		Key:            stringKey("id", id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, repository.StorageError("get item", err)
	}
	if out.Item == nil {
		return nil, repository.ErrNotFound
	}

	var rec itemRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, repository.StorageError("unmarshal item", err)
	}
	it := rec.toModel()
	return &it, nil
}

// ListItemsByOwner pages through the owner's listing rows and sorts them.
func (s *Store) ListItemsByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.config.OwnerItemsTable),
		KeyConditionExpression: aws.String("#uid = :uid"),
		ConsistentRead:         aws.Bool(true),
		ExpressionAttributeNames: map[string]string{
			"#uid": "user_id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: ownerID},
		},
	})

	items := []model.Item{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, repository.StorageError("list items", err)
		}
		var recs []itemRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, repository.StorageError("unmarshal items", err)
		}
		for _, rec := range recs {
			items = append(items, rec.toModel())
		}
	}

	repository.SortItems(items)
	return items, nil
}

// SearchItemsByOwner filters in process: DynamoDB's contains() is case-sensitive.
func (s *Store) SearchItemsByOwner(ctx context.Context, ownerID, term string) ([]model.Item, error) {
	all, err := s.ListItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	matched := []model.Item{}
	for _, it := range all {
		if repository.NameMatches(it.Name, term) {
			matched = append(matched, it)
		}
	}
	return matched, nil
}

// UpdateItem updates both copies of the item. The owner is read first to
// address the listing row.
func (s *Store) UpdateItem(ctx context.Context, item *model.Item) error {
	current, err := s.GetItem(ctx, item.ID)
	if err != nil {
		return err
	}

	values := map[string]types.AttributeValue{
		":name":     &types.AttributeValueMemberS{Value: item.Name},
		":desc":     &types.AttributeValueMemberS{Value: item.Description},
		":quantity": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", item.Quantity)},
	}
	expr := "SET #name = :name, #desc = :desc, #quantity = :quantity"
	names := map[string]string{
		"#id":       "id",
		"#name":     "name",
		"#desc":     "description",
		"#quantity": "quantity",
	}
	if item.UpdatedAt != nil {
		ts, err := attributevalue.Marshal(item.UpdatedAt.UTC())
		if err != nil {
			return fmt.Errorf("marshal timestamp: %w", err)
		}
		values[":updated_at"] = ts
		names["#updated_at"] = "updated_at"
		expr += ", #updated_at = :updated_at"
	}

	update := func(table string, key map[string]types.AttributeValue) *types.Update {
		return &types.Update{
			TableName:                 aws.String(table),
			Key:                       key,
			UpdateExpression:          aws.String(expr),
			ConditionExpression:       aws.String("attribute_exists(#id)"),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		}
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: update(s.config.ItemsTable, stringKey("id", item.ID))},
			{Update: update(s.config.OwnerItemsTable, ownerKey(current.UserID, item.ID))},
		},
	})
	return mapTransactionError("update item", err, func(int) error { return repository.ErrNotFound })
}

// DeleteItem removes both copies of the item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	current, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	remove := func(table string, key map[string]types.AttributeValue) *types.Delete {
		return &types.Delete{
			TableName:                aws.String(table),
			Key:                      key,
			ConditionExpression:      aws.String("attribute_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		}
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: remove(s.config.ItemsTable, stringKey("id", id))},
			{Delete: remove(s.config.OwnerItemsTable, ownerKey(current.UserID, id))},
		},
	})
	return mapTransactionError("delete item", err, func(int) error { return repository.ErrNotFound })
}
