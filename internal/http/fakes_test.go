package httpapi

import (
	"context"
	"fmt"
	"time"

	"baymax-vitals/internal/classifier"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/narrative"
	"baymax-vitals/internal/repository"
	"baymax-vitals/internal/service"
	"baymax-vitals/internal/trend"
)

type fakeProfileService struct {
	profiles map[string]*models.Profile
}

func (f *fakeProfileService) Get(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, repository.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProfileService) Update(_ context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		p = &models.Profile{UserID: userID}
		f.profiles[userID] = p
	}
	p.Apply(patch)
	return p, nil
}

type fakeReadingService struct {
	saved []*models.HealthReading
}

func (f *fakeReadingService) Save(_ context.Context, r *models.HealthReading) error {
	if r.HeartRate <= 0 {
		return fmt.Errorf("%w: heartRate must be positive", service.ErrInvalidInput)
	}
	r.ID = "r-1"
	f.saved = append(f.saved, r)
	return nil
}

func (f *fakeReadingService) List(_ context.Context, userID string, days int) ([]*models.HealthReading, error) {
	return nil, nil
}

func (f *fakeReadingService) Today(_ context.Context, userID string) (*models.HealthReading, error) {
	return nil, fmt.Errorf("reading: %w", repository.ErrNotFound)
}

func (f *fakeReadingService) Seed(_ context.Context, userID string) ([]*models.HealthReading, error) {
	return []*models.HealthReading{{UserID: userID}}, nil
}

type fakeVitalsService struct {
	lastInput service.HealthCheckInput
	lastView  trend.View
}

func (f *fakeVitalsService) Trends(_ context.Context, userID string, view trend.View) (*trend.Report, error) {
	f.lastView = view
	return &trend.Report{View: view, Atypical: []string{}}, nil
}

func (f *fakeVitalsService) HealthCheck(_ context.Context, userID string, in service.HealthCheckInput) (*service.HealthCheckResult, error) {
	f.lastInput = in
	return &service.HealthCheckResult{
		Results: []models.HealthCheckResponse{
			{StatName: models.StatHeartbeat, IsTypical: false, Source: models.SourceThreshold},
		},
		Atypical: []models.StatName{models.StatHeartbeat},
	}, nil
}

func (f *fakeVitalsService) CheckStat(_ context.Context, userID string, req models.HealthCheckRequest) (models.HealthCheckResponse, error) {
	if req.StatName != models.StatHeartbeat {
		return models.HealthCheckResponse{}, fmt.Errorf("%w: %q", classifier.ErrUnknownStat, req.StatName)
	}
	return models.HealthCheckResponse{StatName: req.StatName, IsTypical: true, Source: models.SourceThreshold}, nil
}

func (f *fakeVitalsService) CachedResults(_ context.Context, userID string) ([]classifier.CacheEntry, error) {
	return nil, nil
}

type fakeSessionService struct{}

func (fakeSessionService) List(_ context.Context, userID string, limit int) ([]*models.AnalyticsSession, error) {
	return []*models.AnalyticsSession{{SessionID: "s1", UserID: userID}}, nil
}

func (fakeSessionService) Get(_ context.Context, userID, sessionID string) (*models.AnalyticsSession, error) {
	if sessionID != "s1" {
		return nil, fmt.Errorf("analytics session %s: %w", sessionID, repository.ErrNotFound)
	}
	return &models.AnalyticsSession{SessionID: "s1", UserID: userID, ProcessedAt: time.Unix(0, 0)}, nil
}

func (fakeSessionService) Narrative(_ context.Context, userID, sessionID string) (*narrative.Narrative, error) {
	return &narrative.Narrative{Text: "All steady.", Source: narrative.SourceTemplate}, nil
}

func (fakeSessionService) Export(_ context.Context, userID string) ([]byte, error) {
	return []byte("xlsx-bytes"), nil
}

type fakeMedicationService struct {
	sched      models.Schedule
	lastRemove struct {
		day, med string
		index    int
	}
}

func (f *fakeMedicationService) List(_ context.Context, userID string) ([]*models.Medication, error) {
	return nil, nil
}

func (f *fakeMedicationService) Add(_ context.Context, m *models.Medication) (bool, error) {
	if m.Name == "dup" {
		return false, nil
	}
	m.ID = "m-1"
	return true, nil
}

func (f *fakeMedicationService) Remove(_ context.Context, userID, id string) error {
	if id != "m-1" {
		return fmt.Errorf("medication %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

func (f *fakeMedicationService) Schedule(_ context.Context, userID string) (models.Schedule, error) {
	return f.sched, nil
}

func (f *fakeMedicationService) AddToSchedule(_ context.Context, userID, day, med string) (models.Schedule, error) {
	if !models.IsWeekday(day) {
		return nil, fmt.Errorf("%w: unknown day %q", service.ErrInvalidInput, day)
	}
	f.sched[day] = append(f.sched[day], med)
	return f.sched, nil
}

func (f *fakeMedicationService) RemoveFromSchedule(_ context.Context, userID, day, med string, index int) (models.Schedule, error) {
	f.lastRemove.day, f.lastRemove.med, f.lastRemove.index = day, med, index
	return f.sched, nil
}

func (f *fakeMedicationService) ToggleTaken(_ context.Context, userID string, date time.Time, med string, index int) (string, bool, error) {
	return models.TakenKey(date, med, index), true, nil
}

func (f *fakeMedicationService) Taken(_ context.Context, userID string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

type fakeCaretakerService struct {
	err error
	got service.CaretakerRequest
}

func (f *fakeCaretakerService) Notify(_ context.Context, userID string, req service.CaretakerRequest) error {
	f.got = req
	return f.err
}
