package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mqttcommon "baymax-vitals/common/mqtt"
	"baymax-vitals/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionWriter stores what the sensor client sends.
type SessionWriter interface {
	UpsertMetadata(ctx context.Context, sessionID string, meta models.SessionMetadata) (string, error)
	AddReading(ctx context.Context, sessionID, readingKey string, payload map[string]any) error
}

// Subscriber is the part of the MQTT client the ingest consumer uses.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// IngestConsumer MQTT 会话数据消费者
//
// Topics: baymax/sessions/{session_id}/readings and baymax/sessions/{session_id}/status
type IngestConsumer struct {
	subscriber    Subscriber
	sessions      SessionWriter
	publisher     EventPublisher
	logger        *zap.Logger
	readingsTopic string
	statusTopic   string
	qos           byte
	ctx           context.Context
}

func NewIngestConsumer(
	subscriber Subscriber,
	sessions SessionWriter,
	publisher EventPublisher,
	logger *zap.Logger,
	readingsTopic string,
	statusTopic string,
	qos byte,
) *IngestConsumer {
	return &IngestConsumer{
		subscriber:    subscriber,
		sessions:      sessions,
		publisher:     publisher,
		logger:        logger,
		readingsTopic: readingsTopic,
		statusTopic:   statusTopic,
		qos:           qos,
		ctx:           context.Background(),
	}
}

// Start subscribes and blocks until ctx is cancelled.
func (c *IngestConsumer) Start(ctx context.Context) error {
	c.ctx = ctx
	if err := c.subscriber.Subscribe(c.readingsTopic, c.qos, c.HandleReading); err != nil {
		return fmt.Errorf("failed to subscribe to readings topic: %w", err)
	}
	if err := c.subscriber.Subscribe(c.statusTopic, c.qos, c.HandleStatus); err != nil {
		return fmt.Errorf("failed to subscribe to status topic: %w", err)
	}

	c.logger.Info("Ingest consumer started",
		zap.String("readings_topic", c.readingsTopic),
		zap.String("status_topic", c.statusTopic),
	)

	<-ctx.Done()
	return nil
}

// Stop 取消订阅
func (c *IngestConsumer) Stop(ctx context.Context) error {
	if err := c.subscriber.Unsubscribe(c.readingsTopic, c.statusTopic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}
	c.logger.Info("Ingest consumer stopped")
	return nil
}

// sessionIDFromTopic expects baymax/sessions/{session_id}/{kind}.
func sessionIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 4 || parts[len(parts)-2] == "" {
		return "", fmt.Errorf("invalid topic format: %s", topic)
	}
	return parts[len(parts)-2], nil
}

// HandleReading stores one reading. The payload is kept as sent; a "key"
// field names the reading, otherwise one is generated.
func (c *IngestConsumer) HandleReading(topic string, payload []byte) error {
	sessionID, err := sessionIDFromTopic(topic)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("failed to unmarshal reading: %w", err)
	}

	key, _ := fields["key"].(string)
	if key == "" {
		key = uuid.New().String()
	}
	delete(fields, "key")

	if err := c.sessions.AddReading(c.ctx, sessionID, key, fields); err != nil {
		return fmt.Errorf("failed to store reading for %s: %w", sessionID, err)
	}

	c.logger.Debug("Reading stored",
		zap.String("session_id", sessionID),
		zap.String("reading_key", key),
	)
	return nil
}

// HandleStatus stores session metadata and publishes a completion event on
// the transition into "completed".
func (c *IngestConsumer) HandleStatus(topic string, payload []byte) error {
	sessionID, err := sessionIDFromTopic(topic)
	if err != nil {
		return err
	}

	var meta models.SessionMetadata
	if err := json.Unmarshal(payload, &meta); err != nil {
		return fmt.Errorf("failed to unmarshal status: %w", err)
	}
	if meta.Status == "" {
		return fmt.Errorf("status missing for session %s", sessionID)
	}

	prev, err := c.sessions.UpsertMetadata(c.ctx, sessionID, meta)
	if err != nil {
		return fmt.Errorf("failed to store status for %s: %w", sessionID, err)
	}

	c.logger.Info("Session status updated",
		zap.String("session_id", sessionID),
		zap.String("previous_status", prev),
		zap.String("status", meta.Status),
	)

	if meta.Status != models.SessionStatusCompleted || prev == models.SessionStatusCompleted {
		return nil
	}
	if err := c.publisher.PublishSessionCompleted(c.ctx, sessionID, meta.UserID); err != nil {
		return err
	}
	return nil
}
