package export

import (
	"bytes"
	"testing"
	"time"

	"baymax-vitals/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) [][]string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sessionsSheet)
	require.NoError(t, err)
	return rows
}

func TestGenerateSessionsExport_HeaderOnly(t *testing.T) {
	data, err := GenerateSessionsExport(nil)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, SessionsExportHeader, rows[0])
}

func TestGenerateSessionsExport_Rows(t *testing.T) {
	sessions := []*models.AnalyticsSession{
		{
			SessionID:   "s1",
			UserID:      "u1",
			Pulse:       models.StatBlock{Average: 72, Max: 80, Min: 65},
			Breathing:   models.StatBlock{Average: 16, Max: 18, Min: 14},
			SessionInfo: models.SessionInfo{StartedAt: "2024-01-01T10:00:00Z", EndedAt: "2024-01-01T10:05:00Z", DataPoints: 3},
			ProcessedAt: time.Date(2024, 1, 1, 10, 6, 0, 0, time.UTC),
		},
		{SessionID: "s2", UserID: "u1", ProcessedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)},
	}

	data, err := GenerateSessionsExport(sessions)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"s1", "2024-01-01T10:00:00Z", "2024-01-01T10:05:00Z", "3", "72", "65", "80", "16", "14", "18", "2024-01-01 10:06:00"}, rows[1])
	assert.Equal(t, "s2", rows[2][0])
	assert.Equal(t, "2024-01-02 09:00:00", rows[2][10])
}
