package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"baymax-vitals/common/database"
	rediscommon "baymax-vitals/common/redis"
	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/config"
	"baymax-vitals/internal/consumer"
	"baymax-vitals/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// AggregatorService 会话聚合服务
type AggregatorService struct {
	config        *config.Config
	logger        *zap.Logger
	db            *sql.DB
	redisClient   *redis.Client
	sessionsRepo  repository.SessionsRepository
	processor     consumer.SessionProcessor
	eventConsumer *consumer.SessionEventConsumer
}

// NewAggregatorService 创建会话聚合服务
func NewAggregatorService(cfg *config.Config, logger *zap.Logger) (*AggregatorService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sessionsRepo := repository.NewPostgresSessionsRepository(db, logger)
	analyticsRepo := repository.NewPostgresAnalyticsRepository(db, logger)
	processor := aggregator.NewSessionAggregator(analyticsRepo, logger)

	s := &AggregatorService{
		config:       cfg,
		logger:       logger,
		db:           db,
		sessionsRepo: sessionsRepo,
		processor:    processor,
	}

	// Redis is only needed for the event-driven mode
	if cfg.Aggregator.TriggerMode == "events" {
		redisClient := rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.redisClient = redisClient
		s.eventConsumer = consumer.NewSessionEventConsumer(
			redisClient,
			sessionsRepo,
			processor,
			logger,
			cfg.Aggregator.EventStream,
			cfg.Aggregator.ConsumerGroup,
			cfg.Aggregator.ConsumerName,
			cfg.Aggregator.BatchSize,
			cfg.Aggregator.BlockTimeout,
		)
	}

	return s, nil
}

// Start 启动服务（阻塞直到 ctx 取消）
func (s *AggregatorService) Start(ctx context.Context) error {
	s.logger.Info("Starting session aggregator service",
		zap.String("trigger_mode", s.config.Aggregator.TriggerMode),
	)

	switch s.config.Aggregator.TriggerMode {
	case "polling":
		return s.startPollingMode(ctx)
	case "events":
		return s.startEventDrivenMode(ctx)
	default:
		return fmt.Errorf("unsupported trigger mode: %s", s.config.Aggregator.TriggerMode)
	}
}

func (s *AggregatorService) startPollingMode(ctx context.Context) error {
	interval := s.config.Aggregator.Polling.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting polling mode", zap.Duration("interval", interval))

	if err := s.ProcessPending(ctx); err != nil {
		s.logger.Error("Failed to process pending sessions on startup", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.ProcessPending(ctx); err != nil {
				s.logger.Error("Failed to process pending sessions", zap.Error(err))
			}
		}
	}
}

// startEventDrivenMode sweeps once for sessions completed while the service
// was down, then blocks on the event stream.
func (s *AggregatorService) startEventDrivenMode(ctx context.Context) error {
	s.logger.Info("Starting event-driven mode")

	if err := s.ProcessPending(ctx); err != nil {
		s.logger.Error("Failed to process pending sessions on startup", zap.Error(err))
	}

	if s.eventConsumer == nil {
		return fmt.Errorf("event consumer not initialized")
	}
	return s.eventConsumer.Start(ctx)
}

// ProcessSession aggregates a single session by id.
func (s *AggregatorService) ProcessSession(ctx context.Context, sessionID string) (aggregator.Outcome, error) {
	rec, err := s.sessionsRepo.GetSessionRecord(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return s.processor.Process(ctx, sessionID, rec)
}

// ProcessPending aggregates completed sessions that have no summary yet.
func (s *AggregatorService) ProcessPending(ctx context.Context) error {
	batch := s.config.Aggregator.Polling.BatchSize
	if batch <= 0 {
		batch = 50
	}
	ids, err := s.sessionsRepo.ListUnprocessedCompleted(ctx, batch)
	if err != nil {
		return fmt.Errorf("failed to list pending sessions: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	successCount := 0
	errorCount := 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		outcome, err := s.ProcessSession(ctx, id)
		if err != nil {
			s.logger.Error("Failed to process session",
				zap.String("session_id", id),
				zap.Error(err),
			)
			errorCount++
			continue
		}
		if outcome == aggregator.OutcomeWritten {
			successCount++
		}
	}

	s.logger.Info("Completed pending session sweep",
		zap.Int("session_count", len(ids)),
		zap.Int("success_count", successCount),
		zap.Int("error_count", errorCount),
	)
	return nil
}

// Stop 停止服务
func (s *AggregatorService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping session aggregator service")

	if s.eventConsumer != nil {
		snap := s.eventConsumer.Metrics().GetSnapshot()
		s.logger.Info("Session event consumer metrics",
			zap.Int64("processed", snap.MessagesProcessed),
			zap.Int64("succeeded", snap.MessagesSucceeded),
			zap.Int64("failed", snap.MessagesFailed),
			zap.Int64("skipped", snap.MessagesSkipped),
		)
	}

	if s.redisClient != nil {
		if err := rediscommon.Close(s.redisClient); err != nil {
			s.logger.Error("Error closing redis connection", zap.Error(err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Error closing database connection", zap.Error(err))
		}
	}

	s.logger.Info("Session aggregator service stopped")
	return nil
}
