package classifier

import (
	"context"
	"testing"

	"baymax-vitals/internal/models"
	"baymax-vitals/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestCheckAll_FixedOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New(store.NewMemoryKV(), nil, nil, nil, Options{}, zap.NewNop())
	profile := models.Profile{Sex: "Male", Age: 45, Weight: "80kg", Height: "180cm"}

	res, err := c.CheckAll(context.Background(), "u1", profile, 110, 16, 7)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, models.StatHeartbeat, res[0].StatName)
	assert.False(t, res[0].IsTypical)
	assert.Equal(t, models.StatRespirationRate, res[1].StatName)
	assert.True(t, res[1].IsTypical)
	assert.Equal(t, models.StatMood, res[2].StatName)
	assert.True(t, res[2].IsTypical)
}

func TestCheckAll_RemoteFailuresFallBackToTable(t *testing.T) {
	defer goleak.VerifyNone(t)

	gen := newFakeGenerator().reply("gemini-1.5-flash", "", assert.AnError)
	gen.reply("gemini-1.5-pro", "", assert.AnError)
	c := New(nil, gen, nil, nil, Options{}, zap.NewNop())

	res, err := c.CheckAll(context.Background(), "", models.Profile{Age: 30}, 72, 14, 6)
	require.NoError(t, err)
	for _, r := range res {
		assert.Equal(t, models.SourceThreshold, r.Source)
	}
	assert.Equal(t, 6, gen.callCount())
}

func TestRequestFor_Units(t *testing.T) {
	p := models.Profile{Sex: "Female", Age: 8, Conditions: "asthma"}
	assert.Equal(t, UnitHeartbeat, RequestFor(p, models.StatHeartbeat, 90).Unit)
	assert.Equal(t, UnitRespirationRate, RequestFor(p, models.StatRespirationRate, 20).Unit)
	r := RequestFor(p, models.StatMood, 6)
	assert.Equal(t, UnitMood, r.Unit)
	assert.Equal(t, "asthma", r.Conditions)
	assert.Equal(t, 8, r.Age)
}
