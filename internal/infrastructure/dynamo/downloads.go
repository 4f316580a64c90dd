package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/onehope/resources-api/internal/domain"
)

// DownloadLogRepo appends and queries the per-user download history.
// PK: user_id, SK: entry_id (ULID, so entries sort by creation time).
type DownloadLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDownloadLogRepo(client *dynamodb.Client, tableName string) *DownloadLogRepo {
	return &DownloadLogRepo{client: client, tableName: tableName}
}

func (r *DownloadLogRepo) Put(ctx context.Context, e *domain.DownloadEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal download entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListRecent returns up to limit entries for the user, newest first.
func (r *DownloadLogRepo) ListRecent(ctx context.Context, userID string, limit int32) ([]domain.DownloadEntry, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("query download log: %w", err)
	}
	var entries []domain.DownloadEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
