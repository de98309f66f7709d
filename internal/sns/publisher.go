// Package sns delivers ephemeral toasts as push messages through an SNS
// topic. Subscribers filter on the category and kind attributes.
package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
	"github.com/lalithlochan/officebell/internal/notify"
)

const sinkName = "sns"

// Config holds SNS settings. Endpoint overrides the AWS endpoint (LocalStack).
type Config struct {
	Region   string
	TopicARN string
	Endpoint string
}

// api is the part of *sns.Client the publisher calls.
type api interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Action is the primary action carried with a push message.
type Action struct {
	Label   string `json:"label"`
	Trigger string `json:"trigger"`
	Style   string `json:"style,omitempty"`
}

// Message is the JSON body published for each toast.
type Message struct {
	NotificationID string            `json:"notification_id"`
	UserID         string            `json:"user_id"`
	Kind           string            `json:"kind"`
	Category       string            `json:"category"`
	Title          string            `json:"title"`
	Body           string            `json:"body,omitempty"`
	DurationMs     int64             `json:"duration_ms"`
	Dismissible    bool              `json:"dismissible"`
	PrimaryAction  *Action           `json:"primary_action,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
	SentAt         int64             `json:"sent_at"`
}

// Publisher is a notify.EphemeralSink backed by an SNS topic.
type Publisher struct {
	client   api
	topicARN string
	logger   *zap.Logger
}

// NewPublisher creates a publisher for cfg.TopicARN.
func NewPublisher(ctx context.Context, cfg Config, logger *zap.Logger) (*Publisher, error) {
	if cfg.TopicARN == "" {
		return nil, fmt.Errorf("sns topic ARN is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("sns publisher initialized",
		zap.String("topic_arn", cfg.TopicARN),
		zap.String("region", cfg.Region),
	)

	return &Publisher{
		client:   client,
		topicARN: cfg.TopicARN,
		logger:   logger.Named("sns"),
	}, nil
}

// NewMessage converts a toast into its wire form.
func NewMessage(t notify.Toast, sentAt time.Time) Message {
	msg := Message{
		NotificationID: t.ID,
		UserID:         t.UserID,
		Kind:           string(t.Kind),
		Category:       string(t.Category),
		Title:          t.Title,
		Body:           t.Body,
		DurationMs:     t.Duration.Milliseconds(),
		Dismissible:    t.Dismissible,
		Data:           t.Data,
		SentAt:         sentAt.Unix(),
	}
	if t.PrimaryAction != nil {
		msg.PrimaryAction = &Action{
			Label:   t.PrimaryAction.Label,
			Trigger: t.PrimaryAction.Trigger,
			Style:   string(t.PrimaryAction.Style),
		}
	}
	return msg
}

// Accept implements notify.EphemeralSink.
func (p *Publisher) Accept(ctx context.Context, t notify.Toast) error {
	payload, err := json.Marshal(NewMessage(t, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"category": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(t.Category)),
			},
			"kind": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(t.Kind)),
			},
			"user_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(t.UserID),
			},
		},
	}

	result, err := p.client.Publish(ctx, input)
	if err != nil {
		metrics.RecordSinkDelivery(sinkName, "error")
		return fmt.Errorf("failed to publish to SNS: %w", err)
	}

	metrics.RecordSinkDelivery(sinkName, "ok")
	p.logger.Debug("toast published",
		zap.String("id", t.ID),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
