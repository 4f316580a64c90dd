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

// SavedResourceRepo stores the resources a user pinned.
// PK: user_id, SK: resource_id. Saving twice is a no-op overwrite.
type SavedResourceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSavedResourceRepo(client *dynamodb.Client, tableName string) *SavedResourceRepo {
	return &SavedResourceRepo{client: client, tableName: tableName}
}

func (r *SavedResourceRepo) Put(ctx context.Context, s *domain.SavedResource) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal saved resource: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SavedResourceRepo) Delete(ctx context.Context, userID, resourceID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "resource_id", resourceID),
	})
	return err
}

func (r *SavedResourceRepo) ListByUser(ctx context.Context, userID string) ([]domain.SavedResource, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query saved resources: %w", err)
	}
	var saved []domain.SavedResource
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}
