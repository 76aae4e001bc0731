package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"baymax-vitals/internal/models"

	"go.uber.org/zap"
)

// PostgresAnalyticsRepository analytics_sessions
type PostgresAnalyticsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresAnalyticsRepository(db *sql.DB, logger *zap.Logger) *PostgresAnalyticsRepository {
	return &PostgresAnalyticsRepository{db: db, logger: logger}
}

var _ AnalyticsRepository = (*PostgresAnalyticsRepository)(nil)

const analyticsColumns = `
	session_id, user_id,
	pulse_avg, pulse_max, pulse_min,
	breathing_avg, breathing_max, breathing_min,
	started_at, ended_at, data_points, breathing_points, processed_at
`

func (r *PostgresAnalyticsRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM analytics_sessions WHERE session_id = $1)`,
		sessionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check analytics session: %w", err)
	}
	return exists, nil
}

// CreateIfAbsent 原子写入：已存在则不覆盖
func (r *PostgresAnalyticsRepository) CreateIfAbsent(ctx context.Context, a *models.AnalyticsSession) (bool, error) {
	query := `
		INSERT INTO analytics_sessions (
			session_id, user_id,
			pulse_avg, pulse_max, pulse_min,
			breathing_avg, breathing_max, breathing_min,
			started_at, ended_at, data_points, breathing_points, processed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
		ON CONFLICT (session_id) DO NOTHING
		RETURNING processed_at
	`

	err := r.db.QueryRowContext(ctx, query,
		a.SessionID, a.UserID,
		a.Pulse.Average, a.Pulse.Max, a.Pulse.Min,
		a.Breathing.Average, a.Breathing.Max, a.Breathing.Min,
		a.SessionInfo.StartedAt, a.SessionInfo.EndedAt, a.SessionInfo.DataPoints,
		a.SessionInfo.BreathingPoints,
	).Scan(&a.ProcessedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// another writer got there first
			return false, nil
		}
		return false, fmt.Errorf("failed to insert analytics session: %w", err)
	}
	return true, nil
}

func (r *PostgresAnalyticsRepository) Get(ctx context.Context, sessionID string) (*models.AnalyticsSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+analyticsColumns+` FROM analytics_sessions WHERE session_id = $1`,
		sessionID,
	)
	a, err := scanAnalytics(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("analytics session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get analytics session: %w", err)
	}
	return a, nil
}

func (r *PostgresAnalyticsRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AnalyticsSession, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+analyticsColumns+` FROM analytics_sessions WHERE user_id = $1 ORDER BY processed_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.AnalyticsSession
	for rows.Next() {
		a, err := scanAnalytics(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analytics session: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalytics(s rowScanner) (*models.AnalyticsSession, error) {
	var a models.AnalyticsSession
	var breathingPoints sql.NullInt64
	err := s.Scan(
		&a.SessionID, &a.UserID,
		&a.Pulse.Average, &a.Pulse.Max, &a.Pulse.Min,
		&a.Breathing.Average, &a.Breathing.Max, &a.Breathing.Min,
		&a.SessionInfo.StartedAt, &a.SessionInfo.EndedAt, &a.SessionInfo.DataPoints,
		&breathingPoints,
		&a.ProcessedAt,
	)
	if err != nil {
		return nil, err
	}
	if breathingPoints.Valid {
		a.SessionInfo.BreathingPoints = int(breathingPoints.Int64)
	} else if a.Breathing != (models.StatBlock{}) {
		// 旧数据没有呼吸样本数，只能按非零统计推断
		a.SessionInfo.BreathingPoints = a.SessionInfo.DataPoints
	}
	return &a, nil
}
