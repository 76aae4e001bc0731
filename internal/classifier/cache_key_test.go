package classifier

import (
	"testing"

	"baymax-vitals/internal/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestNewCacheKey_Normalises(t *testing.T) {
	got := NewCacheKey(models.HealthCheckRequest{
		Sex: " Male ", Age: 40, Weight: "80 KG", Height: "180\tcm",
		StatName: models.StatHeartbeat, StatValue: 72, Conditions: "ignored", Unit: "bpm",
	})
	want := CacheKey{Sex: "male", Age: 40, Weight: "80kg", Height: "180cm", StatName: models.StatHeartbeat, StatValue: 72}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NewCacheKey mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheKey_NoSeparatorCollisions(t *testing.T) {
	a := CacheKey{Sex: "f", Weight: "70_1", Height: "60"}
	b := CacheKey{Sex: "f", Weight: "70", Height: "1_60"}
	assert.NotEqual(t, a.Hash(), b.Hash())
}

func TestCacheKey_StorageKey(t *testing.T) {
	k := CacheKey{Sex: "female", Age: 30, StatName: models.StatMood, StatValue: 5}
	key := k.StorageKey("u1")
	assert.Equal(t, "health-check:u1:"+k.Hash(), key)
	assert.Len(t, k.Hash(), 64)
	assert.Equal(t, k.Hash(), CacheKey{Sex: "female", Age: 30, StatName: models.StatMood, StatValue: 5}.Hash())
}
