package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"baymax-vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadThresholds_Empty(t *testing.T) {
	table, err := LoadThresholds("")
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), table)
}

func TestLoadThresholds_Override(t *testing.T) {
	path := writeFile(t, `
heartbeat:
  child: {min: 75, max: 115}
  adult: {min: 55, max: 95}
  child_below_age: 14
`)
	table, err := LoadThresholds(path)
	require.NoError(t, err)

	r, ok := table.Range(models.StatHeartbeat, 13)
	require.True(t, ok)
	assert.Equal(t, Range{Min: 75, Max: 115}, r)

	// untouched stats keep their defaults
	assert.Equal(t, DefaultThresholds()[models.StatMood], table[models.StatMood])
}

func TestLoadThresholds_Errors(t *testing.T) {
	_, err := LoadThresholds(writeFile(t, "blood pressure:\n  adult: {min: 1, max: 2}\n"))
	assert.ErrorIs(t, err, ErrUnknownStat)

	_, err = LoadThresholds(writeFile(t, "mood:\n  adult: {min: 9, max: 4}\n"))
	assert.Error(t, err)

	_, err = LoadThresholds(writeFile(t, "mood: [unclosed"))
	assert.Error(t, err)

	_, err = LoadThresholds(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
