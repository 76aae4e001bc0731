package repository

import (
	"context"
	"database/sql"
	"testing"

	"baymax-vitals/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProfiles_GetAndUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresProfilesRepository(db, zap.NewNop())
	ctx := context.Background()

	mock.ExpectQuery(`FROM profiles`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_id", "name", "age", "height", "weight", "sex", "conditions",
			"caretaker_name", "caretaker_phone", "email",
		}).AddRow("u1", "Ana", 34, "165cm", "60kg", "Female", "asthma", "Bo", "555", "ana@example.com"))

	p, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, 34, p.Age)
	assert.Equal(t, "asthma", p.Conditions)

	mock.ExpectExec(`INSERT INTO profiles`).
		WithArgs("u1", "Ana", 35, "165cm", "60kg", "Female", "asthma", "Bo", "555", "ana@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))
	p.Age = 35
	require.NoError(t, repo.Upsert(ctx, p))

	mock.ExpectQuery(`FROM profiles`).WithArgs("u2").WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(ctx, "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, repo.Upsert(ctx, &models.Profile{}))
	require.NoError(t, mock.ExpectationsWereMet())
}
