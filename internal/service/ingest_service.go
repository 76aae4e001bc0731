package service

import (
	"context"
	"database/sql"
	"fmt"

	"baymax-vitals/common/database"
	mqttcommon "baymax-vitals/common/mqtt"
	rediscommon "baymax-vitals/common/redis"
	"baymax-vitals/internal/config"
	"baymax-vitals/internal/consumer"
	"baymax-vitals/internal/repository"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// IngestService stores sensor readings and status changes received over MQTT.
type IngestService struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttcommon.Client
	consumer    *consumer.IngestConsumer
}

func NewIngestService(cfg *config.Config, logger *zap.Logger) (*IngestService, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
	if err != nil {
		redisClient.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create MQTT client: %w", err)
	}

	sessionsRepo := repository.NewPostgresSessionsRepository(db, logger)
	publisher := consumer.NewStreamPublisher(redisClient, cfg.Aggregator.EventStream)
	ingest := consumer.NewIngestConsumer(
		mqttClient,
		sessionsRepo,
		publisher,
		logger,
		cfg.Ingest.ReadingsTopic,
		cfg.Ingest.StatusTopic,
		cfg.MQTT.QoS,
	)

	return &IngestService{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		mqttClient:  mqttClient,
		consumer:    ingest,
	}, nil
}

func (s *IngestService) Start(ctx context.Context) error {
	s.logger.Info("Starting ingest service",
		zap.String("broker", s.config.MQTT.Broker),
		zap.String("event_stream", s.config.Aggregator.EventStream),
	)
	return s.consumer.Start(ctx)
}

func (s *IngestService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping ingest service")

	if err := s.consumer.Stop(ctx); err != nil {
		s.logger.Error("Error stopping ingest consumer", zap.Error(err))
	}
	s.mqttClient.Disconnect()

	if err := rediscommon.Close(s.redisClient); err != nil {
		s.logger.Error("Error closing redis connection", zap.Error(err))
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("Error closing database connection", zap.Error(err))
	}

	s.logger.Info("Ingest service stopped")
	return nil
}
