package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestReadingService(repo repository.ReadingsRepository, now time.Time) *readingService {
	s := NewReadingService(repo, zap.NewNop()).(*readingService)
	s.now = func() time.Time { return now }
	s.rng = rand.New(rand.NewPCG(1, 2))
	return s
}

func TestSeed_WritesWeekOfReadings(t *testing.T) {
	repo := &fakeReadings{}
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	s := newTestReadingService(repo, now)

	readings, err := s.Seed(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, readings, 7)

	for i, r := range readings {
		assert.Equal(t, "u1", r.UserID)
		assert.Equal(t, now.AddDate(0, 0, i-6), r.Timestamp)
		assert.GreaterOrEqual(t, r.HeartRate, 68.0)
		assert.LessOrEqual(t, r.HeartRate, 83.0)
		assert.GreaterOrEqual(t, r.Breathing, 16.0)
		assert.LessOrEqual(t, r.Breathing, 20.0)
		require.NotNil(t, r.Mood)
		assert.GreaterOrEqual(t, *r.Mood, 6.0)
		assert.LessOrEqual(t, *r.Mood, 8.0)
		assert.Equal(t, r.HeartRate, float64(int(r.HeartRate)), "values are rounded")
	}

	again, err := s.Seed(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Len(t, repo.items, 7)
}

func TestSave_Validates(t *testing.T) {
	s := newTestReadingService(&fakeReadings{}, time.Now())

	err := s.Save(context.Background(), &models.HealthReading{HeartRate: 70, Breathing: 15})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	err = s.Save(context.Background(), &models.HealthReading{UserID: "u1", HeartRate: 0, Breathing: 15})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	r := &models.HealthReading{UserID: "u1", HeartRate: 70, Breathing: 15}
	require.NoError(t, s.Save(context.Background(), r))
	assert.False(t, r.Timestamp.IsZero())
}

func TestListAndToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC)
	repo := &fakeReadings{items: []*models.HealthReading{
		{UserID: "u1", Timestamp: now.AddDate(0, 0, -10), HeartRate: 70, Breathing: 15},
		{UserID: "u1", Timestamp: now.AddDate(0, 0, -6).Add(-17 * time.Hour), HeartRate: 71, Breathing: 15},
		{UserID: "u1", Timestamp: now.Add(-2 * time.Hour), HeartRate: 72, Breathing: 15},
		{UserID: "u1", Timestamp: now.Add(-1 * time.Hour), HeartRate: 73, Breathing: 15},
	}}
	s := newTestReadingService(repo, now)

	items, err := s.List(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 71.0, items[0].HeartRate)

	today, err := s.Today(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 73.0, today.HeartRate)

	_, err = s.Today(context.Background(), "nobody")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
