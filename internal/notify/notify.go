package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrDisabled is returned when no caretaker webhook is configured.
var ErrDisabled = errors.New("caretaker notifications disabled")

// AtypicalStat 异常指标
type AtypicalStat struct {
	StatName string  `json:"statName"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
}

// CaretakerMessage is the body posted to the caretaker webhook.
type CaretakerMessage struct {
	UserID         string         `json:"userId"`
	UserName       string         `json:"userName,omitempty"`
	CaretakerName  string         `json:"caretakerName,omitempty"`
	CaretakerPhone string         `json:"caretakerPhone,omitempty"`
	Message        string         `json:"message"`
	SessionID      string         `json:"sessionId,omitempty"`
	Atypical       []AtypicalStat `json:"atypical,omitempty"`
	SentAt         time.Time      `json:"sentAt"`
}

// Notifier delivers caretaker messages.
type Notifier interface {
	Notify(ctx context.Context, msg *CaretakerMessage) error
}

// WebhookNotifier posts caretaker messages as JSON to a single URL.
type WebhookNotifier struct {
	httpClient *resty.Client
	url        string
	logger     *zap.Logger
}

// NewWebhookNotifier 创建 webhook 通知客户端；url 为空时 Notify 返回 ErrDisabled
func NewWebhookNotifier(url string, timeout time.Duration, retries int, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &WebhookNotifier{
		httpClient: client,
		url:        url,
		logger:     logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, msg *CaretakerMessage) error {
	if n.url == "" {
		return ErrDisabled
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	n.logger.Info("Notifying caretaker",
		zap.String("user_id", msg.UserID),
		zap.String("session_id", msg.SessionID),
		zap.Int("atypical_count", len(msg.Atypical)),
	)

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		Post(n.url)
	if err != nil {
		n.logger.Error("Caretaker webhook call failed", zap.Error(err))
		return fmt.Errorf("failed to call caretaker webhook: %w", err)
	}
	if resp.IsError() {
		n.logger.Error("Caretaker webhook returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("body", resp.String()),
		)
		return fmt.Errorf("caretaker webhook error: status %d", resp.StatusCode())
	}
	return nil
}
