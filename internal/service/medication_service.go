package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"

	"go.uber.org/zap"
)

// MedicationService 用药、周计划与服药记录
type MedicationService interface {
	List(ctx context.Context, userID string) ([]*models.Medication, error)
	// Add returns false when an identical medication already exists.
	Add(ctx context.Context, m *models.Medication) (bool, error)
	Remove(ctx context.Context, userID, medicationID string) error

	Schedule(ctx context.Context, userID string) (models.Schedule, error)
	AddToSchedule(ctx context.Context, userID, day, medication string) (models.Schedule, error)
	RemoveFromSchedule(ctx context.Context, userID, day, medication string, index int) (models.Schedule, error)

	// ToggleTaken flips the taken flag of dose index of medication on date.
	ToggleTaken(ctx context.Context, userID string, date time.Time, medication string, index int) (string, bool, error)
	Taken(ctx context.Context, userID string) (map[string]bool, error)
}

type medicationService struct {
	repo   repository.MedicationsRepository
	logger *zap.Logger
}

func NewMedicationService(repo repository.MedicationsRepository, logger *zap.Logger) MedicationService {
	return &medicationService{repo: repo, logger: logger}
}

func (s *medicationService) List(ctx context.Context, userID string) ([]*models.Medication, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.repo.List(ctx, userID)
}

func (s *medicationService) Add(ctx context.Context, m *models.Medication) (bool, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.UserID == "" || m.Name == "" {
		return false, fmt.Errorf("%w: userId and name are required", ErrInvalidInput)
	}
	added, err := s.repo.Add(ctx, m)
	if err != nil {
		return false, err
	}
	if !added {
		s.logger.Debug("Duplicate medication ignored",
			zap.String("user_id", m.UserID),
			zap.String("name", m.Name),
		)
	}
	return added, nil
}

func (s *medicationService) Remove(ctx context.Context, userID, medicationID string) error {
	if userID == "" || medicationID == "" {
		return fmt.Errorf("%w: userId and medication id are required", ErrInvalidInput)
	}
	return s.repo.Remove(ctx, userID, medicationID)
}

func (s *medicationService) Schedule(ctx context.Context, userID string) (models.Schedule, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	sched, err := s.repo.GetSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}
	// every weekday present so clients can render empty days
	if sched == nil {
		sched = models.Schedule{}
	}
	for _, d := range models.Weekdays {
		if sched[d] == nil {
			sched[d] = []string{}
		}
	}
	return sched, nil
}

func (s *medicationService) AddToSchedule(ctx context.Context, userID, day, medication string) (models.Schedule, error) {
	if err := validateScheduleArgs(userID, day, medication); err != nil {
		return nil, err
	}
	if err := s.repo.AddToSchedule(ctx, userID, day, medication); err != nil {
		return nil, err
	}
	return s.Schedule(ctx, userID)
}

func (s *medicationService) RemoveFromSchedule(ctx context.Context, userID, day, medication string, index int) (models.Schedule, error) {
	if err := validateScheduleArgs(userID, day, medication); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: index must not be negative", ErrInvalidInput)
	}
	if err := s.repo.RemoveFromSchedule(ctx, userID, day, medication, index); err != nil {
		return nil, err
	}
	return s.Schedule(ctx, userID)
}

func (s *medicationService) ToggleTaken(ctx context.Context, userID string, date time.Time, medication string, index int) (string, bool, error) {
	if userID == "" || medication == "" {
		return "", false, fmt.Errorf("%w: userId and medication are required", ErrInvalidInput)
	}
	if index < 0 {
		return "", false, fmt.Errorf("%w: index must not be negative", ErrInvalidInput)
	}
	key := models.TakenKey(date, medication, index)
	taken, err := s.repo.ToggleTaken(ctx, userID, key)
	if err != nil {
		return "", false, err
	}
	return key, taken, nil
}

func (s *medicationService) Taken(ctx context.Context, userID string) (map[string]bool, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	return s.repo.ListTaken(ctx, userID)
}

func validateScheduleArgs(userID, day, medication string) error {
	if userID == "" || medication == "" {
		return fmt.Errorf("%w: userId and medication are required", ErrInvalidInput)
	}
	if !models.IsWeekday(day) {
		return fmt.Errorf("%w: unknown day %q", ErrInvalidInput, day)
	}
	return nil
}
