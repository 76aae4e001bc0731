package service

import (
	"context"
	"fmt"

	"baymax-vitals/internal/export"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/narrative"
	"baymax-vitals/internal/repository"

	"go.uber.org/zap"
)

// DefaultSessionLimit 会话列表默认条数
const DefaultSessionLimit = 50

// SessionService 会话分析结果查询、解读与导出
type SessionService interface {
	List(ctx context.Context, userID string, limit int) ([]*models.AnalyticsSession, error)
	Get(ctx context.Context, userID, sessionID string) (*models.AnalyticsSession, error)
	Narrative(ctx context.Context, userID, sessionID string) (*narrative.Narrative, error)
	Export(ctx context.Context, userID string) ([]byte, error)
}

type sessionService struct {
	analytics repository.AnalyticsRepository
	profiles  repository.ProfilesRepository
	narrator  *narrative.Generator
	logger    *zap.Logger
}

func NewSessionService(
	analytics repository.AnalyticsRepository,
	profiles repository.ProfilesRepository,
	narrator *narrative.Generator,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		analytics: analytics,
		profiles:  profiles,
		narrator:  narrator,
		logger:    logger,
	}
}

func (s *sessionService) List(ctx context.Context, userID string, limit int) ([]*models.AnalyticsSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	return s.analytics.ListByUser(ctx, userID, limit)
}

// Get returns the summary only if it belongs to userID.
func (s *sessionService) Get(ctx context.Context, userID, sessionID string) (*models.AnalyticsSession, error) {
	if userID == "" || sessionID == "" {
		return nil, fmt.Errorf("%w: userId and sessionId are required", ErrInvalidInput)
	}
	a, err := s.analytics.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("analytics session %s: %w", sessionID, repository.ErrNotFound)
	}
	return a, nil
}

func (s *sessionService) Narrative(ctx context.Context, userID, sessionID string) (*narrative.Narrative, error) {
	a, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := profileOrEmpty(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	n, err := s.narrator.Generate(ctx, userID, narrative.SummaryOf(*p), narrative.StatsOf(a))
	if err != nil {
		return nil, err
	}
	s.logger.Info("Session narrative generated",
		zap.String("user_id", userID),
		zap.String("session_id", sessionID),
		zap.String("source", n.Source),
		zap.Bool("notify_caretaker", n.NotifyCaretaker),
	)
	return &n, nil
}

func (s *sessionService) Export(ctx context.Context, userID string) ([]byte, error) {
	sessions, err := s.List(ctx, userID, 0)
	if err != nil {
		return nil, err
	}
	return export.GenerateSessionsExport(sessions)
}
