// Package dynamo implements repository.Store on DynamoDB.
//
// Users and items are stored as documents in their own tables keyed by "id".
// Usernames and emails are kept unique with one constraint row per value,
// written in the same transaction as the user, so two concurrent
// registrations for the same name cannot both succeed.
//
// Every item is written twice in one transaction: to the items table, for
// lookups by id, and to the owner items table, keyed by owner and id. Owner
// listings query the latter with consistent reads, so an item is listed as
// soon as CreateItem returns.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"fsanano/stockroom/internal/repository"
)

// API is the subset of *dynamodb.Client used by the store.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// Store provides the user and item repositories on DynamoDB.
type Store struct {
	client API
	config Config
}

var _ repository.Store = (*Store)(nil)

// New creates a Store around an existing client.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{client: client, config: config}
}

// ConnectOptions selects the AWS region and an optional endpoint override,
// e.g. http://localhost:8000 for DynamoDB Local.
type ConnectOptions struct {
	Region   string
	Endpoint string
}

// Connect loads the default AWS configuration and builds a Store. When an
// endpoint override is given, static dummy credentials are used.
func Connect(ctx context.Context, opts ConnectOptions, config Config) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return New(client, config), nil
}

// Ping checks that the users table is reachable.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.config.UsersTable),
	})
	if err != nil {
		return repository.StorageError("ping", err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Store) Close() error { return nil }

// Migrate creates any missing table with on-demand billing and waits for it
// to become active.
func (s *Store) Migrate(ctx context.Context) error {
	for _, input := range s.tableDefinitions() {
		_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName})
		if err == nil {
			continue
		}
		var notFound *types.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			return fmt.Errorf("describe table %s: %w", aws.ToString(input.TableName), err)
		}

		if _, err := s.client.CreateTable(ctx, input); err != nil {
			var inUse *types.ResourceInUseException
			if !errors.As(err, &inUse) {
				return fmt.Errorf("create table %s: %w", aws.ToString(input.TableName), err)
			}
		}

		waiter := dynamodb.NewTableExistsWaiter(s.client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: input.TableName}, 2*time.Minute); err != nil {
			return fmt.Errorf("wait for table %s: %w", aws.ToString(input.TableName), err)
		}
	}
	return nil
}

func (s *Store) tableDefinitions() []*dynamodb.CreateTableInput {
	hashKey := func(name string) []types.KeySchemaElement {
		return []types.KeySchemaElement{{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}}
	}
	stringAttr := func(name string) types.AttributeDefinition {
		return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: types.ScalarAttributeTypeS}
	}

	return []*dynamodb.CreateTableInput{
		{
			TableName:            aws.String(s.config.UsersTable),
			KeySchema:            hashKey("id"),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("id")},
			BillingMode:          types.BillingModePayPerRequest,
		},
		{
			TableName:            aws.String(s.config.ItemsTable),
			KeySchema:            hashKey("id"),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("id")},
			BillingMode:          types.BillingModePayPerRequest,
		},
		{
			TableName: aws.String(s.config.OwnerItemsTable),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
				{AttributeName: aws.String("id"), KeyType: types.KeyTypeRange},
			},
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("user_id"), stringAttr("id")},
			BillingMode:          types.BillingModePayPerRequest,
		},
		{
			TableName:            aws.String(s.config.ConstraintsTable),
			KeySchema:            hashKey("pk"),
			AttributeDefinitions: []types.AttributeDefinition{stringAttr("pk")},
			BillingMode:          types.BillingModePayPerRequest,
		},
	}
}

func stringKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{name: &types.AttributeValueMemberS{Value: value}}
}

func ownerKey(ownerID, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id": &types.AttributeValueMemberS{Value: ownerID},
		"id":      &types.AttributeValueMemberS{Value: id},
	}
}

// mapConditionError maps a failed single-item condition to sentinel, and
// anything else to a storage error.
func mapConditionError(op string, err error, sentinel error) error {
	if err == nil {
		return nil
	}
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return sentinel
	}
	return repository.StorageError(op, err)
}

// mapTransactionError maps a cancelled transaction to the error returned by
// byIndex for the first write whose condition failed.
func mapTransactionError(op string, err error, byIndex func(i int) error) error {
	if err == nil {
		return nil
	}
	var txErr *types.TransactionCanceledException
	if errors.As(err, &txErr) {
		for i, reason := range txErr.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return byIndex(i)
			}
		}
	}
	return repository.StorageError(op, err)
}
