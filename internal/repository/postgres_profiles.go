package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"baymax-vitals/internal/models"

	"go.uber.org/zap"
)

// PostgresProfilesRepository profiles
type PostgresProfilesRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresProfilesRepository(db *sql.DB, logger *zap.Logger) *PostgresProfilesRepository {
	return &PostgresProfilesRepository{db: db, logger: logger}
}

var _ ProfilesRepository = (*PostgresProfilesRepository)(nil)

func (r *PostgresProfilesRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, name, age, height, weight, sex, conditions,
		       caretaker_name, caretaker_phone, email
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(
		&p.UserID, &p.Name, &p.Age, &p.Height, &p.Weight, &p.Sex, &p.Conditions,
		&p.CaretakerName, &p.CaretakerPhone, &p.Email,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresProfilesRepository) Upsert(ctx context.Context, p *models.Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, name, age, height, weight, sex, conditions,
			caretaker_name, caretaker_phone, email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			name            = EXCLUDED.name,
			age             = EXCLUDED.age,
			height          = EXCLUDED.height,
			weight          = EXCLUDED.weight,
			sex             = EXCLUDED.sex,
			conditions      = EXCLUDED.conditions,
			caretaker_name  = EXCLUDED.caretaker_name,
			caretaker_phone = EXCLUDED.caretaker_phone,
			email           = EXCLUDED.email,
			updated_at      = now()
	`, p.UserID, p.Name, p.Age, p.Height, p.Weight, p.Sex, p.Conditions,
		p.CaretakerName, p.CaretakerPhone, p.Email)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
