package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"

	"go.uber.org/zap"
)

// DefaultReadingDays 默认查询天数
const DefaultReadingDays = 7

// ReadingService 日常体征读数服务
type ReadingService interface {
	Save(ctx context.Context, r *models.HealthReading) error
	// List readings of the last days calendar days (today included), oldest first.
	List(ctx context.Context, userID string, days int) ([]*models.HealthReading, error)
	// Today latest reading taken since local midnight.
	Today(ctx context.Context, userID string) (*models.HealthReading, error)
	// Seed writes a week of sample readings when the user has none and
	// returns them; it returns nil when readings already exist.
	Seed(ctx context.Context, userID string) ([]*models.HealthReading, error)
}

type readingService struct {
	repo   repository.ReadingsRepository
	logger *zap.Logger
	now    func() time.Time
	rng    *rand.Rand
}

func NewReadingService(repo repository.ReadingsRepository, logger *zap.Logger) ReadingService {
	return &readingService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)),
	}
}

func (s *readingService) Save(ctx context.Context, r *models.HealthReading) error {
	if r.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if r.HeartRate <= 0 || r.Breathing <= 0 {
		return fmt.Errorf("%w: heartRate and breathing must be positive", ErrInvalidInput)
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	return s.repo.Save(ctx, r)
}

func (s *readingService) List(ctx context.Context, userID string, days int) ([]*models.HealthReading, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if days <= 0 {
		days = DefaultReadingDays
	}
	since := startOfDay(s.now()).AddDate(0, 0, -(days - 1))
	return s.repo.ListSince(ctx, userID, since)
}

func (s *readingService) Today(ctx context.Context, userID string) (*models.HealthReading, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.repo.LatestSince(ctx, userID, startOfDay(s.now()))
}

func (s *readingService) Seed(ctx context.Context, userID string) ([]*models.HealthReading, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	n, err := s.repo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		s.logger.Info("User already has readings, skipping seed",
			zap.String("user_id", userID),
			zap.Int("reading_count", n),
		)
		return nil, nil
	}

	now := s.now().UTC()
	readings := make([]*models.HealthReading, 0, 7)
	for i := 6; i >= 0; i-- {
		mood := s.jitter(7, 2)
		r := &models.HealthReading{
			UserID:    userID,
			Timestamp: now.AddDate(0, 0, -i),
			HeartRate: s.jitter(75, 15),
			Breathing: s.jitter(18, 4),
			Mood:      &mood,
		}
		if err := s.repo.Save(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to save seed reading: %w", err)
		}
		readings = append(readings, r)
	}

	s.logger.Info("Seeded sample readings",
		zap.String("user_id", userID),
		zap.Int("reading_count", len(readings)),
	)
	return readings, nil
}

// jitter base ± spread/2, rounded
func (s *readingService) jitter(base, spread float64) float64 {
	return aggregator.RoundHalfUp(base + (s.rng.Float64()-0.5)*spread)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
