package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/glucotrack/api/internal/domain"
	"github.com/glucotrack/api/internal/pkg/id"
)

// AuditRepo appends security events to the audit table. Events are write-only
// from this service's perspective; there is no update or delete path.
type AuditRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAuditRepo(client *dynamodb.Client, tableName string) *AuditRepo {
	return &AuditRepo{client: client, tableName: tableName}
}

func (r *AuditRepo) Record(ctx context.Context, userID, action, clientIP string, metadata map[string]string) error {
	ev := &domain.AuditEvent{
		EventID:   id.New(),
		UserID:    userID,
		Action:    action,
		IPAddress: clientIP,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	item, err := attributevalue.MarshalMap(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
