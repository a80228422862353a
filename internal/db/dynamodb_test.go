package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/newscard/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	input *dynamodb.PutItemInput
	err   error
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.input = in
	return &dynamodb.PutItemOutput{}, f.err
}

func TestDynamoDBLedger_Record(t *testing.T) {
	fake := &fakeDynamo{}
	ledger := NewDynamoDBLedger(fake, "PublishedPosts")
	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	err := ledger.Record(context.Background(), models.PublishedPost{
		Category:    "Business",
		Link:        "https://example.com/port",
		Headline:    "Dhaka Port Expansion Begins",
		PublishedAt: published,
	})
	require.NoError(t, err)
	require.Equal(t, "PublishedPosts", *fake.input.TableName)

	link, ok := fake.input.Item["link"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	require.Equal(t, "https://example.com/port", link.Value)

	expires, ok := fake.input.Item["expires_at"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	require.Equal(t, "1741435200", expires.Value)
}

func TestDynamoDBLedger_Error(t *testing.T) {
	fake := &fakeDynamo{err: errors.New("throttled")}
	err := NewDynamoDBLedger(fake, "t").Record(context.Background(), models.PublishedPost{})
	require.ErrorContains(t, err, "throttled")
}
