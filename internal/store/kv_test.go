package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetMiss(t *testing.T) {
	_, kv := setupTestRedis(t)

	_, err := kv.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrMiss))
}

func TestRedisKV_SetGetWithoutTTL(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "health-check:u1:abc", `{"isTypical":true}`, 0))

	got, err := kv.Get(ctx, "health-check:u1:abc")
	require.NoError(t, err)
	assert.Equal(t, `{"isTypical":true}`, got)
	assert.Equal(t, time.Duration(0), mr.TTL("health-check:u1:abc"))
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "health-check:u1:a", "1", 0))
	require.NoError(t, kv.Set(ctx, "health-check:u1:b", "1", 0))
	require.NoError(t, kv.Set(ctx, "session-narrative:u1:c", "1", 0))

	keys, err := kv.ScanKeys(ctx, "health-check:u1:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"health-check:u1:a", "health-check:u1:b"}, keys)
}

func TestJSONHelpers(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	type entry struct {
		UserID    string `json:"userId"`
		IsTypical bool   `json:"isTypical"`
	}

	var out entry
	assert.ErrorIs(t, GetJSON(ctx, kv, "k", &out), ErrMiss)

	require.NoError(t, SetJSON(ctx, kv, "k", entry{UserID: "u1", IsTypical: true}, 0))
	require.NoError(t, GetJSON(ctx, kv, "k", &out))
	assert.Equal(t, entry{UserID: "u1", IsTypical: true}, out)

	require.NoError(t, kv.Set(ctx, "bad", "{", 0))
	assert.Error(t, GetJSON(ctx, kv, "bad", &out))
}

func TestMemoryKV_ScanKeys(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, "a:1", "x", 0))
	require.NoError(t, kv.Set(ctx, "a:2", "x", 0))
	require.NoError(t, kv.Set(ctx, "b:1", "x", 0))

	keys, err := kv.ScanKeys(ctx, "a:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "a:2"}, keys)
	assert.Equal(t, 3, kv.Len())
}

func TestEscapePattern(t *testing.T) {
	assert.Equal(t, "u1", EscapePattern("u1"))
	assert.Equal(t, `\*`, EscapePattern("*"))
	assert.Equal(t, `a\?b\[c\]\\`, EscapePattern(`a?b[c]\`))
}

func TestScanKeys_EscapedIDMatchesLiterally(t *testing.T) {
	_, redisKV := setupTestRedis(t)
	ctx := context.Background()

	for name, kv := range map[string]KV{"redis": redisKV, "memory": NewMemoryKV()} {
		require.NoError(t, kv.Set(ctx, "health-check:alice:a", "1", 0), name)
		require.NoError(t, kv.Set(ctx, "health-check:bob:b", "1", 0), name)
		require.NoError(t, kv.Set(ctx, "health-check:*:c", "1", 0), name)

		keys, err := kv.ScanKeys(ctx, "health-check:"+EscapePattern("*")+":*")
		require.NoError(t, err, name)
		assert.Equal(t, []string{"health-check:*:c"}, keys, name)

		keys, err = kv.ScanKeys(ctx, "health-check:"+EscapePattern("[ab]lice")+":*")
		require.NoError(t, err, name)
		assert.Empty(t, keys, name)
	}
}
