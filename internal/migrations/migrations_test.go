package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_ListsAllMigrationsInOrder(t *testing.T) {
	ms, err := Source().FindMigrations()
	require.NoError(t, err)
	require.Len(t, ms, 4)

	assert.Equal(t, "0001_sessions.sql", ms[0].Id)
	assert.Equal(t, "0002_users.sql", ms[1].Id)
	assert.Equal(t, "0003_medications.sql", ms[2].Id)
	assert.Equal(t, "0004_breathing_points.sql", ms[3].Id)

	for _, m := range ms {
		assert.NotEmpty(t, m.Up, m.Id)
		assert.NotEmpty(t, m.Down, m.Id)
	}
}
