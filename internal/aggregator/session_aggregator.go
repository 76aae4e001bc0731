package aggregator

import (
	"context"
	"fmt"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"

	"go.uber.org/zap"
)

// Outcome 处理结果
type Outcome int

const (
	OutcomeSkippedNotCompleted Outcome = iota
	OutcomeSkippedExists
	OutcomeSkippedNoReadings
	OutcomeSkippedNoPulse
	OutcomeWritten
	// OutcomeAlreadyProcessed another writer inserted the summary between the
	// existence check and our insert
	OutcomeAlreadyProcessed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkippedNotCompleted:
		return "skipped_not_completed"
	case OutcomeSkippedExists:
		return "skipped_exists"
	case OutcomeSkippedNoReadings:
		return "skipped_no_readings"
	case OutcomeSkippedNoPulse:
		return "skipped_no_pulse"
	case OutcomeWritten:
		return "written"
	case OutcomeAlreadyProcessed:
		return "already_processed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// SessionAggregator turns a completed session into its analytics summary.
type SessionAggregator struct {
	analytics repository.AnalyticsRepository
	logger    *zap.Logger
}

func NewSessionAggregator(analytics repository.AnalyticsRepository, logger *zap.Logger) *SessionAggregator {
	return &SessionAggregator{analytics: analytics, logger: logger}
}

// Process 处理一个会话；写入失败时返回错误，由调用方决定是否重试
func (a *SessionAggregator) Process(ctx context.Context, sessionID string, rec *models.SessionRecord) (Outcome, error) {
	if rec == nil || rec.Metadata.Status != models.SessionStatusCompleted {
		return OutcomeSkippedNotCompleted, nil
	}

	exists, err := a.analytics.Exists(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to check analytics for %s: %w", sessionID, err)
	}
	if exists {
		a.logger.Debug("Analytics already exist, skipping",
			zap.String("session_id", sessionID),
		)
		return OutcomeSkippedExists, nil
	}

	if len(rec.Readings) == 0 {
		a.logger.Info("No readings found for session",
			zap.String("session_id", sessionID),
		)
		return OutcomeSkippedNoReadings, nil
	}

	pulses, breaths := ExtractSeries(rec.Readings)
	if len(pulses) == 0 {
		a.logger.Info("No valid pulse data for session",
			zap.String("session_id", sessionID),
			zap.Int("reading_count", len(rec.Readings)),
		)
		return OutcomeSkippedNoPulse, nil
	}

	summary := &models.AnalyticsSession{
		SessionID: sessionID,
		UserID:    rec.Metadata.UserID,
		Pulse:     ComputeStats(pulses),
		Breathing: ComputeStats(breaths),
		SessionInfo: models.SessionInfo{
			StartedAt:       rec.Metadata.StartTime,
			EndedAt:         rec.Metadata.EndTime,
			DataPoints:      len(pulses),
			BreathingPoints: len(breaths),
		},
	}

	created, err := a.analytics.CreateIfAbsent(ctx, summary)
	if err != nil {
		a.logger.Error("Failed to write analytics session",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return 0, fmt.Errorf("failed to write analytics for %s: %w", sessionID, err)
	}
	if !created {
		a.logger.Info("Analytics written concurrently by another worker",
			zap.String("session_id", sessionID),
		)
		return OutcomeAlreadyProcessed, nil
	}

	a.logger.Info("Session analytics written",
		zap.String("session_id", sessionID),
		zap.String("user_id", summary.UserID),
		zap.Float64("pulse_avg", summary.Pulse.Average),
		zap.Float64("breathing_avg", summary.Breathing.Average),
		zap.Int("data_points", summary.SessionInfo.DataPoints),
		zap.Int("breathing_points", summary.SessionInfo.BreathingPoints),
	)
	return OutcomeWritten, nil
}
