package aggregator

import (
	"context"

	"baymax-vitals/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockAnalyticsRepository 是 AnalyticsRepository 的 mock 实现
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Exists(ctx context.Context, sessionID string) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnalyticsRepository) CreateIfAbsent(ctx context.Context, a *models.AnalyticsSession) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnalyticsRepository) Get(ctx context.Context, sessionID string) (*models.AnalyticsSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AnalyticsSession), args.Error(1)
}

func (m *MockAnalyticsRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.AnalyticsSession, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AnalyticsSession), args.Error(1)
}
