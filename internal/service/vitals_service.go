package service

import (
	"context"
	"fmt"
	"time"

	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"
	"baymax-vitals/internal/trend"

	"go.uber.org/zap"
)

// adultAge stands in for a missing profile so the adult bands apply.
const adultAge = 30

// HealthCheckInput values to classify; nil fields fall back to today's reading.
type HealthCheckInput struct {
	HeartRate *float64 `json:"heartRate,omitempty"`
	Breathing *float64 `json:"breathing,omitempty"`
	Mood      *float64 `json:"mood,omitempty"`
}

// HealthCheckResult 三项体征分类结果
type HealthCheckResult struct {
	Results  []models.HealthCheckResponse `json:"results"`
	Atypical []models.StatName            `json:"atypical"`
}

// VitalsService trends and typical/atypical checks over a user's readings
type VitalsService interface {
	Trends(ctx context.Context, userID string, view trend.View) (*trend.Report, error)
	HealthCheck(ctx context.Context, userID string, in HealthCheckInput) (*HealthCheckResult, error)
	CheckStat(ctx context.Context, userID string, req models.HealthCheckRequest) (models.HealthCheckResponse, error)
	CachedResults(ctx context.Context, userID string) ([]classifier.CacheEntry, error)
}

type vitalsService struct {
	readings   repository.ReadingsRepository
	profiles   repository.ProfilesRepository
	classifier *classifier.Classifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewVitalsService(
	readings repository.ReadingsRepository,
	profiles repository.ProfilesRepository,
	cls *classifier.Classifier,
	logger *zap.Logger,
) VitalsService {
	return &vitalsService{
		readings:   readings,
		profiles:   profiles,
		classifier: cls,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *vitalsService) Trends(ctx context.Context, userID string, view trend.View) (*trend.Report, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	p, err := s.profiles.Get(ctx, userID)
	age := adultAge
	switch {
	case err == nil:
		age = p.Age
	case !isNotFound(err):
		return nil, err
	}

	now := s.now()
	readings, err := s.readings.ListSince(ctx, userID, trend.Since(view, now))
	if err != nil {
		return nil, err
	}
	rep := trend.Build(view, readings, now, age, s.classifier.Thresholds())
	return &rep, nil
}

func (s *vitalsService) HealthCheck(ctx context.Context, userID string, in HealthCheckInput) (*HealthCheckResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.HeartRate == nil || in.Breathing == nil || in.Mood == nil {
		r, err := s.readings.LatestSince(ctx, userID, startOfDay(s.now()))
		if err != nil {
			if isNotFound(err) {
				return nil, fmt.Errorf("%w: no reading today and no values supplied", ErrInvalidInput)
			}
			return nil, err
		}
		if in.HeartRate == nil {
			in.HeartRate = &r.HeartRate
		}
		if in.Breathing == nil {
			in.Breathing = &r.Breathing
		}
		if in.Mood == nil {
			in.Mood = r.Mood
		}
	}
	if in.Mood == nil {
		return nil, fmt.Errorf("%w: mood is required", ErrInvalidInput)
	}

	results, err := s.classifier.CheckAll(ctx, userID, *p, *in.HeartRate, *in.Breathing, *in.Mood)
	if err != nil {
		return nil, err
	}

	out := &HealthCheckResult{Results: results, Atypical: []models.StatName{}}
	for _, r := range results {
		if !r.IsTypical {
			out.Atypical = append(out.Atypical, r.StatName)
		}
	}
	if len(out.Atypical) > 0 {
		s.logger.Info("Atypical stats detected",
			zap.String("user_id", userID),
			zap.Any("stats", out.Atypical),
		)
	}
	return out, nil
}

func (s *vitalsService) CheckStat(ctx context.Context, userID string, req models.HealthCheckRequest) (models.HealthCheckResponse, error) {
	return s.classifier.Check(ctx, userID, req)
}

func (s *vitalsService) CachedResults(ctx context.Context, userID string) ([]classifier.CacheEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.classifier.CachedResults(ctx, userID)
}
