package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"baymax-vitals/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockReadingsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresReadingsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresReadingsRepository(db, zap.NewNop())
}

func TestSaveReading_AssignsID(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	ts := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO health_readings`).
		WithArgs(sqlmock.AnyArg(), "u1", ts, 72.0, 16.0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rd := &models.HealthReading{UserID: "u1", Timestamp: ts, HeartRate: 72, Breathing: 16}
	require.NoError(t, repo.Save(context.Background(), rd))
	assert.NotEmpty(t, rd.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReading_RequiresUser(t *testing.T) {
	db, _, repo := setupMockReadingsDB(t)
	defer db.Close()

	assert.Error(t, repo.Save(context.Background(), &models.HealthReading{}))
}

func readingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"reading_id", "user_id", "ts", "heart_rate", "breathing", "mood"})
}

func TestListSince(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`ORDER BY ts ASC`).WithArgs("u1", since).
		WillReturnRows(readingRows().
			AddRow("a", "u1", since.Add(time.Hour), 70.0, 15.0, 7.0).
			AddRow("b", "u1", since.Add(2*time.Hour), 74.0, 17.0, nil))

	list, err := repo.ListSince(context.Background(), "u1", since)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].Mood)
	assert.Equal(t, 7.0, *list[0].Mood)
	assert.Nil(t, list[1].Mood)
}

func TestLatestSince_NotFound(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectQuery(`ORDER BY ts DESC`).WillReturnRows(readingRows())

	_, err := repo.LatestSince(context.Background(), "u1", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountReadings(t *testing.T) {
	db, mock, repo := setupMockReadingsDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT`).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.Count(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
