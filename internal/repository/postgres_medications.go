package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"baymax-vitals/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PostgresMedicationsRepository medications, medication_schedule, medication_taken
type PostgresMedicationsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresMedicationsRepository(db *sql.DB, logger *zap.Logger) *PostgresMedicationsRepository {
	return &PostgresMedicationsRepository{db: db, logger: logger}
}

var _ MedicationsRepository = (*PostgresMedicationsRepository)(nil)

func (r *PostgresMedicationsRepository) List(ctx context.Context, userID string) ([]*models.Medication, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT medication_id::text, user_id, name, frequency, time_of_day, reminder
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at, name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	var out []*models.Medication
	for rows.Next() {
		var m models.Medication
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Frequency, &m.Time, &m.Reminder); err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Add 添加用药；完全相同的记录视为重复
func (r *PostgresMedicationsRepository) Add(ctx context.Context, m *models.Medication) (bool, error) {
	if m.UserID == "" || m.Name == "" {
		return false, fmt.Errorf("user_id and name are required")
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (medication_id, user_id, name, frequency, time_of_day, reminder)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, name, frequency, time_of_day, reminder) DO NOTHING
	`, m.ID, m.UserID, m.Name, m.Frequency, m.Time, m.Reminder)
	if err != nil {
		return false, fmt.Errorf("failed to add medication: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add medication: %w", err)
	}
	return n > 0, nil
}

// Remove 删除用药，并从每天的计划中移除
func (r *PostgresMedicationsRepository) Remove(ctx context.Context, userID, medicationID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var name string
	err = tx.QueryRowContext(ctx, `
		DELETE FROM medications
		WHERE user_id = $1 AND medication_id::text = $2
		RETURNING name
	`, userID, medicationID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete medication: %w", err)
	}

	// another entry with the same name (different time/frequency) keeps its schedule
	var remaining int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM medications WHERE user_id = $1 AND name = $2`,
		userID, name,
	).Scan(&remaining); err != nil {
		return fmt.Errorf("failed to count medications: %w", err)
	}
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM medication_schedule WHERE user_id = $1 AND medication = $2`,
			userID, name,
		); err != nil {
			return fmt.Errorf("failed to clear schedule: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// GetSchedule every weekday is present in the result, empty days included
func (r *PostgresMedicationsRepository) GetSchedule(ctx context.Context, userID string) (models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, medication
		FROM medication_schedule
		WHERE user_id = $1
		ORDER BY day, position, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	defer rows.Close()

	sched := make(models.Schedule, len(models.Weekdays))
	for _, d := range models.Weekdays {
		sched[d] = []string{}
	}
	for rows.Next() {
		var day, med string
		if err := rows.Scan(&day, &med); err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		sched[day] = append(sched[day], med)
	}
	return sched, rows.Err()
}

// AddToSchedule appends medication to day. Duplicates are allowed.
func (r *PostgresMedicationsRepository) AddToSchedule(ctx context.Context, userID, day, medication string) error {
	if !models.IsWeekday(day) {
		return fmt.Errorf("invalid day %q", day)
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medication_schedule (user_id, day, medication, position)
		SELECT $1, $2, $3, COALESCE(MAX(position), -1) + 1
		FROM medication_schedule
		WHERE user_id = $1 AND day = $2
	`, userID, day, medication)
	if err != nil {
		return fmt.Errorf("failed to add to schedule: %w", err)
	}
	return nil
}

func (r *PostgresMedicationsRepository) RemoveFromSchedule(ctx context.Context, userID, day, medication string, index int) error {
	if index < 0 {
		return fmt.Errorf("invalid index %d", index)
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medication_schedule
		WHERE id = (
			SELECT id FROM medication_schedule
			WHERE user_id = $1 AND day = $2
			ORDER BY position, id
			OFFSET $3 LIMIT 1
		) AND medication = $4
	`, userID, day, index, medication)
	if err != nil {
		return fmt.Errorf("failed to remove from schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove from schedule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("schedule entry %s[%d]: %w", day, index, ErrNotFound)
	}
	return nil
}

func (r *PostgresMedicationsRepository) ToggleTaken(ctx context.Context, userID, recordID string) (bool, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO medication_taken (user_id, record_id, taken)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (user_id, record_id) DO UPDATE SET
			taken = NOT medication_taken.taken,
			updated_at = now()
		RETURNING taken
	`, userID, recordID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("failed to toggle taken: %w", err)
	}
	return taken, nil
}

func (r *PostgresMedicationsRepository) ListTaken(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT record_id, taken FROM medication_taken WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list taken records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		var taken bool
		if err := rows.Scan(&id, &taken); err != nil {
			return nil, fmt.Errorf("failed to scan taken record: %w", err)
		}
		out[id] = taken
	}
	return out, rows.Err()
}
