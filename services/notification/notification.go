package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"healthcare-booking/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

const (
	TypeAppointmentReminder = "appointment_reminder"
	TypePasswordReset       = "password_reset"
	TypeEmailVerification   = "email_verification"
)

// Message is queued for the delivery worker that sends emails and SMS.
type Message struct {
	Type      string            `json:"type"`
	AccountID uint              `json:"account_id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSNotifier queues messages on an SQS queue.
type SQSNotifier struct {
	client   sqsAPI
	queueURL string
}

func NewSQSNotifier(cfg aws.Config, queueURL string) *SQSNotifier {
	client := sqs.New(sqs.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
	})
	return &SQSNotifier{client: client, queueURL: queueURL}
}

func (n *SQSNotifier) Notify(ctx context.Context, msg Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to queue %s notification: %w", msg.Type, err)
	}
	return nil
}

// LogNotifier only logs; it is used when no queue is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, msg Message) error {
	logger.Info(fmt.Sprintf("Notification %s for account %d (queue disabled)", msg.Type, msg.AccountID))
	return nil
}
