package recordstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/chatql/chatql/internal/core"
)

// DynamoDBStore keeps each table's log as items under one partition key
// (the table ID) with a monotonic sequence attribute as the sort key, so a
// descending Query over the partition yields the newest records first.
//
// Expected table shape: partition key "table_id" (S), sort key "seq" (S).
type DynamoDBStore struct {
	client    *dynamodb.Client
	tableName string
	closed    bool
	logger    *slog.Logger
}

// NewDynamoDBStore connects to DynamoDB and verifies the backing table
// exists.
func NewDynamoDBStore(region, tableName, endpoint, accessKeyID, secretAccessKey string) (*DynamoDBStore, error) {
	if region == "" {
		return nil, fmt.Errorf("region is required")
	}
	if tableName == "" {
		return nil, fmt.Errorf("table name is required")
	}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	if accessKeyID != "" && secretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")
	}

	clientOptions := []func(*dynamodb.Options){}
	if endpoint != "" {
		// Custom endpoint, e.g. LocalStack.
		clientOptions = append(clientOptions, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	client := dynamodb.NewFromConfig(cfg, clientOptions...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to DynamoDB table %s: %w", tableName, err)
	}

	return &DynamoDBStore{
		client:    client,
		tableName: tableName,
		logger:    slog.Default(),
	}, nil
}

// seqKey renders a nanosecond timestamp as a fixed-width, lexically ordered
// sort key.
func seqKey(t time.Time) string {
	return fmt.Sprintf("%020d", t.UnixNano())
}

// Append writes the record as a new item keyed by table ID and sequence.
func (d *DynamoDBStore) Append(ctx context.Context, tableID string, record string) error {
	if d.closed {
		return fmt.Errorf("record store is closed")
	}

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"table_id": &types.AttributeValueMemberS{Value: tableID},
			"seq":      &types.AttributeValueMemberS{Value: seqKey(time.Now())},
			"record":   &types.AttributeValueMemberS{Value: record},
			"created":  &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})
	if err != nil {
		d.logger.Error("dynamodb append failed", "table", tableID, "error", err)
		return fmt.Errorf("failed to append to %s: %w", tableID, err)
	}
	return nil
}

// ReadRecent queries the partition newest-first, then reverses the page so
// callers see records oldest first.
func (d *DynamoDBStore) ReadRecent(ctx context.Context, tableID string, limit int) ([]string, error) {
	if d.closed {
		return nil, fmt.Errorf("record store is closed")
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("table_id = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: tableID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		input.Limit = aws.Int32(int32(limit))
	}

	result, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", tableID, err)
	}

	records := make([]string, 0, len(result.Items))
	for i := len(result.Items) - 1; i >= 0; i-- {
		if attr, ok := result.Items[i]["record"].(*types.AttributeValueMemberS); ok {
			records = append(records, attr.Value)
		}
	}
	return records, nil
}

// Close marks the store closed; the SDK client holds no pooled resources
// needing release.
func (d *DynamoDBStore) Close() error {
	d.closed = true
	return nil
}

// DynamoDBFactory implements Factory for the DynamoDB backend.
type DynamoDBFactory struct{}

func (f *DynamoDBFactory) Type() string { return "dynamodb" }

func (f *DynamoDBFactory) Validate(config Config) error {
	if config.Type != "dynamodb" {
		return fmt.Errorf("invalid type for DynamoDB factory: %s", config.Type)
	}
	if config.Region == "" {
		return fmt.Errorf("region is required for DynamoDB")
	}
	if config.TableName == "" {
		return fmt.Errorf("table_name is required for DynamoDB")
	}
	return nil
}

func (f *DynamoDBFactory) Create(config Config) (core.RecordStore, error) {
	store, err := NewDynamoDBStore(
		config.Region, config.TableName, config.Endpoint,
		config.AccessKeyID, config.SecretAccessKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB record store: %w", err)
	}
	return store, nil
}

func init() {
	RegisterFactory(&DynamoDBFactory{})
}
