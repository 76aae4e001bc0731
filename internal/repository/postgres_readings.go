package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"baymax-vitals/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostgresReadingsRepository health_readings
type PostgresReadingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresReadingsRepository(db *sql.DB, logger *zap.Logger) *PostgresReadingsRepository {
	return &PostgresReadingsRepository{db: db, logger: logger}
}

var _ ReadingsRepository = (*PostgresReadingsRepository)(nil)

// Save 保存一条读数；ID 为空时生成
func (r *PostgresReadingsRepository) Save(ctx context.Context, rd *models.HealthReading) error {
	if rd.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if rd.ID == "" {
		rd.ID = uuid.New().String()
	}
	if rd.Timestamp.IsZero() {
		rd.Timestamp = time.Now().UTC()
	}

	var mood sql.NullFloat64
	if rd.Mood != nil {
		mood = sql.NullFloat64{Float64: *rd.Mood, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_readings (reading_id, user_id, ts, heart_rate, breathing, mood)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rd.ID, rd.UserID, rd.Timestamp, rd.HeartRate, rd.Breathing, mood)
	if err != nil {
		return fmt.Errorf("failed to save reading: %w", err)
	}
	return nil
}

// ListSince readings at or after since, oldest first
func (r *PostgresReadingsRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]*models.HealthReading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT reading_id::text, user_id, ts, heart_rate, breathing, mood
		FROM health_readings
		WHERE user_id = $1 AND ts >= $2
		ORDER BY ts ASC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	var out []*models.HealthReading
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

func (r *PostgresReadingsRepository) LatestSince(ctx context.Context, userID string, since time.Time) (*models.HealthReading, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT reading_id::text, user_id, ts, heart_rate, breathing, mood
		FROM health_readings
		WHERE user_id = $1 AND ts >= $2
		ORDER BY ts DESC
		LIMIT 1
	`, userID, since)
	rd, err := scanReading(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reading: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get latest reading: %w", err)
	}
	return rd, nil
}

func (r *PostgresReadingsRepository) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM health_readings WHERE user_id = $1`, userID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return n, nil
}

func scanReading(s rowScanner) (*models.HealthReading, error) {
	var rd models.HealthReading
	var mood sql.NullFloat64
	if err := s.Scan(&rd.ID, &rd.UserID, &rd.Timestamp, &rd.HeartRate, &rd.Breathing, &mood); err != nil {
		return nil, err
	}
	if mood.Valid {
		m := mood.Float64
		rd.Mood = &m
	}
	return &rd, nil
}
