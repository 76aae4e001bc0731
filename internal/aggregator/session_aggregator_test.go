package aggregator

import (
	"context"
	"errors"
	"testing"
	"time"

	"baymax-vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completedSession(readings map[string]map[string]any) *models.SessionRecord {
	return &models.SessionRecord{
		Metadata: models.SessionMetadata{
			Status:    models.SessionStatusCompleted,
			StartTime: "2024-01-01T10:00:00Z",
			EndTime:   "2024-01-01T10:05:00Z",
			UserID:    "u1",
		},
		Readings: readings,
	}
}

func TestProcess_WritesSummary(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	rec := completedSession(map[string]map[string]any{
		"r1": {"pulse": float64(70), "breathing": float64(15)},
		"r2": {"pulse": float64(75), "breathing": float64(16)},
		"r3": {"pulse": float64(80)},
	})

	var written *models.AnalyticsSession
	repo.On("Exists", ctx, "s1").Return(false, nil)
	repo.On("CreateIfAbsent", ctx, mock.AnythingOfType("*models.AnalyticsSession")).
		Run(func(args mock.Arguments) {
			written = args.Get(1).(*models.AnalyticsSession)
			written.ProcessedAt = time.Now()
		}).
		Return(true, nil)

	out, err := agg.Process(ctx, "s1", rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeWritten, out)

	require.NotNil(t, written)
	assert.Equal(t, "s1", written.SessionID)
	assert.Equal(t, "u1", written.UserID)
	assert.Equal(t, models.StatBlock{Average: 75, Max: 80, Min: 70}, written.Pulse)
	// 15.5 rounds half up
	assert.Equal(t, models.StatBlock{Average: 16, Max: 16, Min: 15}, written.Breathing)
	assert.Equal(t, models.SessionInfo{
		StartedAt:       "2024-01-01T10:00:00Z",
		EndedAt:         "2024-01-01T10:05:00Z",
		DataPoints:      3,
		BreathingPoints: 2,
	}, written.SessionInfo)
	repo.AssertExpectations(t)
}

func TestProcess_NotCompletedIsNoop(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())

	rec := completedSession(map[string]map[string]any{"r1": {"pulse": float64(70)}})
	rec.Metadata.Status = models.SessionStatusActive

	out, err := agg.Process(context.Background(), "s1", rec)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedNotCompleted, out)

	out, err = agg.Process(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedNotCompleted, out)

	repo.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
}

func TestProcess_ExistingSummaryIsNeverOverwritten(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("Exists", ctx, "s1").Return(true, nil)

	out, err := agg.Process(ctx, "s1", completedSession(map[string]map[string]any{
		"r1": {"pulse": float64(70)},
	}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedExists, out)
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestProcess_LostRaceIsReported(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("Exists", ctx, "s1").Return(false, nil)
	repo.On("CreateIfAbsent", ctx, mock.Anything).Return(false, nil)

	out, err := agg.Process(ctx, "s1", completedSession(map[string]map[string]any{
		"r1": {"pulse": float64(70)},
	}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyProcessed, out)
}

func TestProcess_NoReadings(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("Exists", ctx, "s1").Return(false, nil)

	out, err := agg.Process(ctx, "s1", completedSession(nil))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedNoReadings, out)
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestProcess_NoNumericPulse(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("Exists", ctx, "s1").Return(false, nil)

	out, err := agg.Process(ctx, "s1", completedSession(map[string]map[string]any{
		"r1": {"pulse": "72", "breathing": float64(15)},
		"r2": {"breathing": float64(16)},
	}))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedNoPulse, out)
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestProcess_EmptyBreathingYieldsZeros(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	var written *models.AnalyticsSession
	repo.On("Exists", ctx, "s1").Return(false, nil)
	repo.On("CreateIfAbsent", ctx, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).(*models.AnalyticsSession) }).
		Return(true, nil)

	_, err := agg.Process(ctx, "s1", completedSession(map[string]map[string]any{
		"r1": {"pulse": float64(70)},
		"r2": {"pulse": float64(71), "breathing": "n/a"},
	}))
	require.NoError(t, err)
	require.NotNil(t, written)
	assert.Equal(t, models.StatBlock{}, written.Breathing)
	assert.Equal(t, 2, written.SessionInfo.DataPoints)
	assert.Equal(t, 0, written.SessionInfo.BreathingPoints)
}

func TestProcess_WriteErrorIsReturned(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("Exists", ctx, "s1").Return(false, nil)
	repo.On("CreateIfAbsent", ctx, mock.Anything).Return(false, errors.New("db down"))

	_, err := agg.Process(ctx, "s1", completedSession(map[string]map[string]any{
		"r1": {"pulse": float64(70)},
	}))
	assert.Error(t, err)
}

func TestProcess_ExistsErrorIsReturned(t *testing.T) {
	repo := new(MockAnalyticsRepository)
	agg := NewSessionAggregator(repo, zap.NewNop())
	ctx := context.Background()

	repo.On("Exists", ctx, "s1").Return(false, errors.New("db down"))

	_, err := agg.Process(ctx, "s1", completedSession(map[string]map[string]any{
		"r1": {"pulse": float64(70)},
	}))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "written", OutcomeWritten.String())
	assert.Equal(t, "already_processed", OutcomeAlreadyProcessed.String())
	assert.Equal(t, "outcome(42)", Outcome(42).String())
}
