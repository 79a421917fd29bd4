package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisKV(client)
}

func TestRedisKV_SetGet(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "pwdreset:code:a@b.c", "123456", 10*time.Minute))

	val, err := kv.Get(ctx, "pwdreset:code:a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "123456", val)
}

func TestRedisKV_MissReturnsErrMiss(t *testing.T) {
	_, kv := setupKV(t)

	_, err := kv.Get(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_TTLExpiry(t *testing.T) {
	mr, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Delete(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, kv.Delete(ctx, "k"))

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
