package service

import (
	"context"
	"fmt"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"

	"go.uber.org/zap"
)

// ProfileService 用户资料服务
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	// Update merges patch into the stored profile, creating it if needed.
	Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
}

type profileService struct {
	repo   repository.ProfilesRepository
	logger *zap.Logger
}

func NewProfileService(repo repository.ProfilesRepository, logger *zap.Logger) ProfileService {
	return &profileService{repo: repo, logger: logger}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.repo.Get(ctx, userID)
}

func (s *profileService) Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if patch.Age != nil && (*patch.Age < 0 || *patch.Age > 150) {
		return nil, fmt.Errorf("%w: age out of range", ErrInvalidInput)
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		p = &models.Profile{UserID: userID}
	}
	p.Apply(patch)

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Profile updated", zap.String("user_id", userID))
	return p, nil
}

// profileOrEmpty returns the stored profile, or an empty one for unknown users.
func profileOrEmpty(ctx context.Context, repo repository.ProfilesRepository, userID string) (*models.Profile, error) {
	p, err := repo.Get(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return &models.Profile{UserID: userID}, nil
		}
		return nil, err
	}
	return p, nil
}
