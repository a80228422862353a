package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spacesedan/newscard/internal/models"
)

// DynamoDBAPI is the slice of the DynamoDB client the ledger uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

type DynamoDBLedger struct {
	Client DynamoDBAPI
	Table  string
}

func NewDynamoDBLedger(client DynamoDBAPI, table string) *DynamoDBLedger {
	return &DynamoDBLedger{Client: client, Table: table}
}

func (d *DynamoDBLedger) Record(ctx context.Context, post models.PublishedPost) error {
	post.ExpiresAt = post.PublishedAt.Add(LEDGER_TTL).Unix()

	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal post: %w", err)
	}

	_, err = d.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.Table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to record post: %w", err)
	}

	slog.Info("[DynamoDB] Recorded published post",
		slog.String("table", d.Table),
		slog.String("category", post.Category),
		slog.String("link", post.Link))
	return nil
}
