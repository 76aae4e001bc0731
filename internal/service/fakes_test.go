package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"baymax-vitals/internal/aggregator"
	"baymax-vitals/internal/models"
	"baymax-vitals/internal/notify"
	"baymax-vitals/internal/repository"
)

type fakeReadings struct {
	mu    sync.Mutex
	items []*models.HealthReading
	err   error
}

func (f *fakeReadings) Save(_ context.Context, r *models.HealthReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if r.ID == "" {
		r.ID = fmt.Sprintf("r-%d", len(f.items)+1)
	}
	f.items = append(f.items, r)
	return nil
}

func (f *fakeReadings) ListSince(_ context.Context, userID string, since time.Time) ([]*models.HealthReading, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.HealthReading
	for _, r := range f.items {
		if r.UserID == userID && !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (f *fakeReadings) LatestSince(ctx context.Context, userID string, since time.Time) (*models.HealthReading, error) {
	items, _ := f.ListSince(ctx, userID, since)
	if len(items) == 0 {
		return nil, fmt.Errorf("reading: %w", repository.ErrNotFound)
	}
	return items[len(items)-1], nil
}

func (f *fakeReadings) Count(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.items {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

type fakeProfiles struct {
	items map[string]*models.Profile
}

func newFakeProfiles(ps ...*models.Profile) *fakeProfiles {
	f := &fakeProfiles{items: map[string]*models.Profile{}}
	for _, p := range ps {
		f.items[p.UserID] = p
	}
	return f
}

func (f *fakeProfiles) Get(_ context.Context, userID string) (*models.Profile, error) {
	p, ok := f.items[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, repository.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfiles) Upsert(_ context.Context, p *models.Profile) error {
	cp := *p
	f.items[p.UserID] = &cp
	return nil
}

type fakeAnalytics struct {
	items map[string]*models.AnalyticsSession
}

func (f *fakeAnalytics) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.items[id]
	return ok, nil
}

func (f *fakeAnalytics) CreateIfAbsent(_ context.Context, a *models.AnalyticsSession) (bool, error) {
	if _, ok := f.items[a.SessionID]; ok {
		return false, nil
	}
	f.items[a.SessionID] = a
	return true, nil
}

func (f *fakeAnalytics) Get(_ context.Context, id string) (*models.AnalyticsSession, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, fmt.Errorf("analytics session %s: %w", id, repository.ErrNotFound)
	}
	return a, nil
}

func (f *fakeAnalytics) ListByUser(_ context.Context, userID string, limit int) ([]*models.AnalyticsSession, error) {
	var out []*models.AnalyticsSession
	for _, a := range f.items {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeMedications struct {
	meds     []*models.Medication
	schedule models.Schedule
	taken    map[string]bool
}

func newFakeMedications() *fakeMedications {
	return &fakeMedications{schedule: models.Schedule{}, taken: map[string]bool{}}
}

func (f *fakeMedications) List(_ context.Context, userID string) ([]*models.Medication, error) {
	return f.meds, nil
}

func (f *fakeMedications) Add(_ context.Context, m *models.Medication) (bool, error) {
	for _, e := range f.meds {
		if e.Name == m.Name && e.Frequency == m.Frequency && e.Time == m.Time && e.Reminder == m.Reminder {
			return false, nil
		}
	}
	m.ID = fmt.Sprintf("m-%d", len(f.meds)+1)
	f.meds = append(f.meds, m)
	return true, nil
}

func (f *fakeMedications) Remove(_ context.Context, userID, id string) error {
	for i, m := range f.meds {
		if m.ID == id {
			f.meds = append(f.meds[:i], f.meds[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("medication %s: %w", id, repository.ErrNotFound)
}

func (f *fakeMedications) GetSchedule(_ context.Context, userID string) (models.Schedule, error) {
	out := models.Schedule{}
	for d, names := range f.schedule {
		out[d] = append([]string(nil), names...)
	}
	return out, nil
}

func (f *fakeMedications) AddToSchedule(_ context.Context, userID, day, med string) error {
	f.schedule[day] = append(f.schedule[day], med)
	return nil
}

func (f *fakeMedications) RemoveFromSchedule(_ context.Context, userID, day, med string, index int) error {
	names := f.schedule[day]
	if index >= len(names) || names[index] != med {
		return fmt.Errorf("schedule entry: %w", repository.ErrNotFound)
	}
	f.schedule[day] = append(names[:index], names[index+1:]...)
	return nil
}

func (f *fakeMedications) ToggleTaken(_ context.Context, userID, key string) (bool, error) {
	f.taken[key] = !f.taken[key]
	return f.taken[key], nil
}

func (f *fakeMedications) ListTaken(_ context.Context, userID string) (map[string]bool, error) {
	return f.taken, nil
}

type fakeSessions struct {
	records map[string]*models.SessionRecord
	pending []string
}

func (f *fakeSessions) UpsertMetadata(_ context.Context, id string, meta models.SessionMetadata) (string, error) {
	return "", nil
}

func (f *fakeSessions) AddReading(_ context.Context, id, key string, payload map[string]any) error {
	return nil
}

func (f *fakeSessions) GetSessionRecord(_ context.Context, id string) (*models.SessionRecord, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, repository.ErrNotFound)
	}
	return rec, nil
}

func (f *fakeSessions) ListUnprocessedCompleted(_ context.Context, limit int) ([]string, error) {
	return f.pending, nil
}

type recordingProcessor struct {
	seen []string
}

func (p *recordingProcessor) Process(_ context.Context, id string, _ *models.SessionRecord) (aggregator.Outcome, error) {
	p.seen = append(p.seen, id)
	return aggregator.OutcomeWritten, nil
}

type fakeNotifier struct {
	sent []*notify.CaretakerMessage
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, msg *notify.CaretakerMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}
