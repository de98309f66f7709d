// Package sqs publishes live-set snapshots to a queue read by the clients
// that render persistent notifications.
package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/lalithlochan/officebell/internal/metrics"
	"github.com/lalithlochan/officebell/internal/notify"
)

const sinkName = "sqs"

// Config holds SQS configuration.
type Config struct {
	Region   string
	QueueURL string
	Endpoint string
}

type api interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Item is one live notification as a renderer sees it.
type Item struct {
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	Body        string            `json:"body,omitempty"`
	Actions     []notify.Action   `json:"actions,omitempty"`
	Dismissible bool              `json:"dismissible"`
	Data        map[string]string `json:"data,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ExpiresAt   *time.Time        `json:"expires_at,omitempty"`
}

// Message is the payload sent to SQS. Renderers drop messages whose
// revision is not newer than the last one they applied.
type Message struct {
	UserID     string `json:"user_id"`
	Revision   uint64 `json:"revision"`
	Items      []Item `json:"items"`
	EnqueuedAt int64  `json:"enqueued_at"`
}

// NewMessage flattens a snapshot. Items keep their stacking order.
func NewMessage(snap notify.Snapshot, at time.Time) Message {
	items := make([]Item, len(snap.Items))
	for i, n := range snap.Items {
		items[i] = Item{
			ID:          n.ID,
			Kind:        string(n.Request.Kind),
			Category:    string(n.Request.Category),
			Title:       n.Request.Title,
			Body:        n.Request.Body,
			Actions:     n.Request.Actions,
			Dismissible: n.Request.Dismissible,
			Data:        n.Request.Data,
			CreatedAt:   n.CreatedAt,
			ExpiresAt:   n.ExpiresAt,
		}
	}
	return Message{
		UserID:     snap.UserID,
		Revision:   snap.Revision,
		Items:      items,
		EnqueuedAt: at.UnixNano(),
	}
}

// Producer is a notify.SnapshotObserver that sends every snapshot to SQS.
// On a FIFO queue snapshots are grouped per user so they arrive in order.
type Producer struct {
	client   api
	queueURL string
	fifo     bool
	logger   *zap.Logger
}

// NewProducer creates a new SQS producer.
func NewProducer(ctx context.Context, cfg Config, logger *zap.Logger) (*Producer, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("sqs queue URL is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	logger.Info("sqs producer initialized",
		zap.String("queue_url", cfg.QueueURL),
	)

	return newProducer(client, cfg.QueueURL, logger), nil
}

func newProducer(client api, queueURL string, logger *zap.Logger) *Producer {
	return &Producer{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
		logger:   logger.Named("sqs"),
	}
}

// Render implements notify.SnapshotObserver.
func (p *Producer) Render(ctx context.Context, snap notify.Snapshot) error {
	body, err := json.Marshal(NewMessage(snap, time.Now()))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"user_id": {
				DataType:    aws.String("String"),
				StringValue: aws.String(snap.UserID),
			},
			"revision": {
				DataType:    aws.String("Number"),
				StringValue: aws.String(strconv.FormatUint(snap.Revision, 10)),
			},
		},
	}
	if p.fifo {
		input.MessageGroupId = aws.String(snap.UserID)
		input.MessageDeduplicationId = aws.String(snap.UserID + "-" + strconv.FormatUint(snap.Revision, 10))
	}

	result, err := p.client.SendMessage(ctx, input)
	if err != nil {
		metrics.RecordSinkDelivery(sinkName, "error")
		p.logger.Error("failed to send snapshot to sqs",
			zap.Error(err),
			zap.String("user_id", snap.UserID),
			zap.Uint64("revision", snap.Revision),
		)
		return fmt.Errorf("sqs send failed: %w", err)
	}

	metrics.RecordSinkDelivery(sinkName, "ok")
	p.logger.Debug("snapshot enqueued",
		zap.String("user_id", snap.UserID),
		zap.Uint64("revision", snap.Revision),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
