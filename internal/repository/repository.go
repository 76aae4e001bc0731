package repository

import (
	"context"
	"errors"
	"time"

	"baymax-vitals/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// SessionsRepository raw sessions written by the sensor client
type SessionsRepository interface {
	// UpsertMetadata stores metadata and returns the status held before the
	// write ("" for a new session).
	UpsertMetadata(ctx context.Context, sessionID string, meta models.SessionMetadata) (string, error)
	AddReading(ctx context.Context, sessionID, readingKey string, payload map[string]any) error
	GetSessionRecord(ctx context.Context, sessionID string) (*models.SessionRecord, error)
	// ListUnprocessedCompleted completed sessions that have no analytics summary yet
	ListUnprocessedCompleted(ctx context.Context, limit int) ([]string, error)
}

// AnalyticsRepository per-session summaries
type AnalyticsRepository interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
	// CreateIfAbsent inserts the summary unless one already exists for the
	// session. On insert a.ProcessedAt is set from the database clock.
	CreateIfAbsent(ctx context.Context, a *models.AnalyticsSession) (bool, error)
	Get(ctx context.Context, sessionID string) (*models.AnalyticsSession, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.AnalyticsSession, error)
}

// ReadingsRepository daily health readings
type ReadingsRepository interface {
	Save(ctx context.Context, r *models.HealthReading) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]*models.HealthReading, error)
	// LatestSince most recent reading at or after since; ErrNotFound if none
	LatestSince(ctx context.Context, userID string, since time.Time) (*models.HealthReading, error)
	Count(ctx context.Context, userID string) (int, error)
}

// ProfilesRepository user profiles
type ProfilesRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, p *models.Profile) error
}

// MedicationsRepository medication list, weekly schedule and taken records
type MedicationsRepository interface {
	List(ctx context.Context, userID string) ([]*models.Medication, error)
	// Add inserts m unless an identical medication exists; returns false for a duplicate.
	Add(ctx context.Context, m *models.Medication) (bool, error)
	// Remove deletes the medication and every schedule entry naming it.
	Remove(ctx context.Context, userID, medicationID string) error

	GetSchedule(ctx context.Context, userID string) (models.Schedule, error)
	AddToSchedule(ctx context.Context, userID, day, medication string) error
	// RemoveFromSchedule removes the entry at index within the day, provided it names medication.
	RemoveFromSchedule(ctx context.Context, userID, day, medication string, index int) error

	// ToggleTaken flips the taken flag for recordID and returns the new value.
	ToggleTaken(ctx context.Context, userID, recordID string) (bool, error)
	ListTaken(ctx context.Context, userID string) (map[string]bool, error)
}
