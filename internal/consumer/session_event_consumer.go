package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	rediscommon "baymax-vitals/common/redis"
	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SessionSource loads a session by id.
type SessionSource interface {
	GetSessionRecord(ctx context.Context, sessionID string) (*models.SessionRecord, error)
}

// SessionProcessor aggregates one session.
type SessionProcessor interface {
	Process(ctx context.Context, sessionID string, rec *models.SessionRecord) (aggregator.Outcome, error)
}

// SessionEventConsumer reads session.completed events from a Redis Stream
// and runs the aggregator for each one.
type SessionEventConsumer struct {
	redisClient  *redis.Client
	sessions     SessionSource
	processor    SessionProcessor
	logger       *zap.Logger
	metrics      *Metrics
	stream       string
	groupName    string
	consumerName string
	batchSize    int64
	block        time.Duration
}

func NewSessionEventConsumer(
	redisClient *redis.Client,
	sessions SessionSource,
	processor SessionProcessor,
	logger *zap.Logger,
	stream string,
	groupName string,
	consumerName string,
	batchSize int64,
	block time.Duration,
) *SessionEventConsumer {
	return &SessionEventConsumer{
		redisClient:  redisClient,
		sessions:     sessions,
		processor:    processor,
		logger:       logger,
		metrics:      NewMetrics(),
		stream:       stream,
		groupName:    groupName,
		consumerName: consumerName,
		batchSize:    batchSize,
		block:        block,
	}
}

// Metrics 返回指标
func (c *SessionEventConsumer) Metrics() *Metrics { return c.metrics }

// Start blocks until ctx is cancelled.
func (c *SessionEventConsumer) Start(ctx context.Context) error {
	if err := rediscommon.CreateConsumerGroup(ctx, c.redisClient, c.stream, c.groupName); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	c.logger.Info("Session event consumer started",
		zap.String("stream", c.stream),
		zap.String("consumer_group", c.groupName),
		zap.String("consumer_name", c.consumerName),
	)

	// 消费事件（带指数退避）
	backoffDuration := time.Second
	maxBackoff := 30 * time.Second

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := c.consumeEvents(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.logger.Error("Failed to consume events",
					zap.Error(err),
					zap.Duration("backoff", backoffDuration),
				)

				select {
				case <-ctx.Done():
					return nil
				case <-time.After(backoffDuration):
					backoffDuration *= 2
					if backoffDuration > maxBackoff {
						backoffDuration = maxBackoff
					}
				}
			} else {
				backoffDuration = time.Second
			}
		}
	}
}

func (c *SessionEventConsumer) consumeEvents(ctx context.Context) error {
	messages, err := rediscommon.ReadFromStream(ctx, c.redisClient, c.stream, c.groupName, c.consumerName, c.batchSize, c.block)
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, msg := range messages {
		c.metrics.IncrementProcessed()

		ack, err := c.processEvent(ctx, msg)
		if err != nil {
			// left pending; the polling sweep picks the session up
			c.logger.Error("Failed to process session event",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
		if !ack {
			continue
		}
		if err := rediscommon.Ack(ctx, c.redisClient, c.stream, c.groupName, msg.ID); err != nil {
			c.logger.Warn("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// processEvent reports whether the message should be acknowledged.
// Unparseable messages are acked so they do not block the group.
func (c *SessionEventConsumer) processEvent(ctx context.Context, msg rediscommon.StreamMessage) (bool, error) {
	event, err := ParseSessionEvent(msg)
	if err != nil {
		c.metrics.IncrementFailed("parse")
		c.logger.Warn("Dropping unparseable session event",
			zap.String("message_id", msg.ID),
			zap.Error(err),
		)
		return true, nil
	}
	if event.Type != "" && event.Type != models.EventTypeSessionCompleted {
		c.metrics.IncrementSkipped()
		return true, nil
	}

	rec, err := c.sessions.GetSessionRecord(ctx, event.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.metrics.IncrementSkipped()
			c.logger.Warn("Session not found for event",
				zap.String("session_id", event.SessionID),
			)
			return true, nil
		}
		c.metrics.IncrementFailed("load")
		return false, fmt.Errorf("failed to load session %s: %w", event.SessionID, err)
	}

	outcome, err := c.processor.Process(ctx, event.SessionID, rec)
	if err != nil {
		c.metrics.IncrementFailed("process")
		return false, err
	}

	if outcome == aggregator.OutcomeWritten {
		c.metrics.IncrementSucceeded()
	} else {
		c.metrics.IncrementSkipped()
	}
	c.logger.Debug("Session event handled",
		zap.String("session_id", event.SessionID),
		zap.Stringer("outcome", outcome),
	)
	return true, nil
}

// ParseSessionEvent decodes the "data" field written by PublishJSONToStream.
func ParseSessionEvent(msg rediscommon.StreamMessage) (*models.SessionCompletedEvent, error) {
	raw, ok := msg.Values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("message %s has no data field", msg.ID)
	}
	var event models.SessionCompletedEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.SessionID == "" {
		return nil, fmt.Errorf("message %s has no session id", msg.ID)
	}
	return &event, nil
}
