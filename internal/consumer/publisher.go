package consumer

import (
	"context"
	"fmt"
	"time"

	rediscommon "baymax-vitals/common/redis"
	"baymax-vitals/internal/models"

	"github.com/go-redis/redis/v8"
)

// EventPublisher announces completed sessions.
type EventPublisher interface {
	PublishSessionCompleted(ctx context.Context, sessionID, userID string) error
}

// StreamPublisher EventPublisher on a Redis Stream
type StreamPublisher struct {
	client *redis.Client
	stream string
}

func NewStreamPublisher(client *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream}
}

func (p *StreamPublisher) PublishSessionCompleted(ctx context.Context, sessionID, userID string) error {
	event := models.SessionCompletedEvent{
		Type:      models.EventTypeSessionCompleted,
		SessionID: sessionID,
		UserID:    userID,
		Timestamp: time.Now().Unix(),
	}
	if _, err := rediscommon.PublishJSONToStream(ctx, p.client, p.stream, event); err != nil {
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}
