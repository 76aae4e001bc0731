package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"baymax-vitals/internal/models"

	"go.uber.org/zap"
)

// PostgresSessionsRepository sessions + session_readings
type PostgresSessionsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresSessionsRepository(db *sql.DB, logger *zap.Logger) *PostgresSessionsRepository {
	return &PostgresSessionsRepository{db: db, logger: logger}
}

var _ SessionsRepository = (*PostgresSessionsRepository)(nil)

// UpsertMetadata 写入会话元数据，返回写入前的状态
func (r *PostgresSessionsRepository) UpsertMetadata(ctx context.Context, sessionID string, meta models.SessionMetadata) (string, error) {
	// prev is evaluated against the snapshot taken before the upsert
	query := `
		WITH prev AS (
			SELECT status FROM sessions WHERE session_id = $1
		)
		INSERT INTO sessions (session_id, user_id, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id) DO UPDATE SET
			user_id    = COALESCE(NULLIF(EXCLUDED.user_id, ''), sessions.user_id),
			status     = EXCLUDED.status,
			start_time = COALESCE(NULLIF(EXCLUDED.start_time, ''), sessions.start_time),
			end_time   = COALESCE(NULLIF(EXCLUDED.end_time, ''), sessions.end_time),
			updated_at = now()
		RETURNING (SELECT status FROM prev)
	`

	var prev sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		sessionID, meta.UserID, meta.Status, meta.StartTime, meta.EndTime,
	).Scan(&prev)
	if err != nil {
		return "", fmt.Errorf("failed to upsert session metadata: %w", err)
	}
	return prev.String, nil
}

// AddReading stores one reading, creating the session row if the reading
// arrives before any status message.
func (r *PostgresSessionsRepository) AddReading(ctx context.Context, sessionID, readingKey string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (session_id) VALUES ($1) ON CONFLICT (session_id) DO NOTHING`,
		sessionID,
	); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO session_readings (session_id, reading_key, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, reading_key) DO UPDATE SET payload = EXCLUDED.payload
	`, sessionID, readingKey, string(body)); err != nil {
		return fmt.Errorf("failed to insert reading: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reading: %w", err)
	}
	return nil
}

// GetSessionRecord loads metadata and all readings of a session.
func (r *PostgresSessionsRepository) GetSessionRecord(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	err := r.db.QueryRowContext(ctx, `
		SELECT status, start_time, end_time, user_id
		FROM sessions
		WHERE session_id = $1
	`, sessionID).Scan(
		&rec.Metadata.Status,
		&rec.Metadata.StartTime,
		&rec.Metadata.EndTime,
		&rec.Metadata.UserID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT reading_key, payload
		FROM session_readings
		WHERE session_id = $1
		ORDER BY reading_key
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var payload []byte
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		var fields map[string]any
		if err := json.Unmarshal(payload, &fields); err != nil {
			// malformed rows are skipped, aggregation only needs the valid ones
			r.logger.Warn("Skipping undecodable reading",
				zap.String("session_id", sessionID),
				zap.String("reading_key", key),
				zap.Error(err),
			)
			continue
		}
		if rec.Readings == nil {
			rec.Readings = make(map[string]map[string]any)
		}
		rec.Readings[key] = fields
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate readings: %w", err)
	}

	return &rec, nil
}

// ListUnprocessedCompleted 查询已完成但尚未生成分析的会话
func (r *PostgresSessionsRepository) ListUnprocessedCompleted(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.session_id
		FROM sessions s
		LEFT JOIN analytics_sessions a ON a.session_id = s.session_id
		WHERE s.status = $1 AND a.session_id IS NULL
		ORDER BY s.updated_at
		LIMIT $2
	`, models.SessionStatusCompleted, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
