package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

type EventType string

const (
	EventTypeImportCompleted EventType = "IMPORT_COMPLETED"

	DefaultStream = "stream:product_import"
	source        = "shopify-product-importer"
)

// RedisClient interface for Redis operations (for testing)
type RedisClient interface {
	XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd
}

// ImportCompletedPayload is the data field of an IMPORT_COMPLETED stream entry.
type ImportCompletedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Total     int       `json:"total"`
	Rows      int       `json:"rows"`
	Failures  int       `json:"failures"`
	Batches   []string  `json:"batches"`
	Source    string    `json:"source"`
}

type Publisher struct {
	redis  RedisClient
	stream string
	logger *slog.Logger
}

func NewPublisher(client RedisClient, stream string, logger *slog.Logger) *Publisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &Publisher{
		redis:  client,
		stream: stream,
		logger: logger.With("component", "event_publisher"),
	}
}

func (p *Publisher) PublishImportCompleted(ctx context.Context, job *models.Job) error {
	payload := NewImportCompletedPayload(job)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"type":      string(EventTypeImportCompleted),
			"job_id":    job.ID,
			"data":      string(data),
			"timestamp": fmt.Sprintf("%d", payload.Timestamp.UnixNano()),
		},
	}

	id, err := p.redis.XAdd(ctx, args).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	p.logger.Info("event published",
		"event_id", payload.EventID,
		"event_type", payload.EventType,
		"job_id", job.ID,
		"stream_id", id)

	return nil
}

func NewImportCompletedPayload(job *models.Job) *ImportCompletedPayload {
	batches := make([]string, 0, len(job.Batches))
	for _, b := range job.Batches {
		batches = append(batches, b.Filename)
	}

	return &ImportCompletedPayload{
		EventID:   uuid.New().String(),
		EventType: string(EventTypeImportCompleted),
		Timestamp: time.Now().UTC(),
		JobID:     job.ID,
		Status:    job.Status,
		Total:     job.Total,
		Rows:      job.RowCount,
		Failures:  len(job.Failures),
		Batches:   batches,
		Source:    source,
	}
}

// NopPublisher is used when no Redis address is configured.
type NopPublisher struct{}

func (NopPublisher) PublishImportCompleted(ctx context.Context, job *models.Job) error {
	return nil
}
