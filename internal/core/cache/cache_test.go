package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name string `json:"name"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoadJSONCachesValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var calls int32
	load := func(context.Context) (*profile, error) {
		atomic.AddInt32(&calls, 1)
		return &profile{Name: "Sarah"}, nil
	}

	for i := 0; i < 3; i++ {
		p, err := GetOrLoadJSON(c, ctx, "user:u1", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, "Sarah", p.Name)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("plantcare:user:u1"))

	mr.FastForward(2 * time.Minute)
	_, err := GetOrLoadJSON(c, ctx, "user:u1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrLoadJSONDoesNotCacheErrors(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db down")
	_, err := GetOrLoadJSON(c, context.Background(), "user:u2", time.Minute, func(context.Context) (*profile, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("plantcare:user:u2"))
}

func TestMGetSetDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, SetJSON(c, ctx, "user:a", profile{Name: "A"}, time.Minute))

	got := c.MGet(ctx, []string{"user:a", "user:b"})
	assert.JSONEq(t, `{"name":"A"}`, string(got["user:a"]))
	_, ok := got["user:b"]
	assert.False(t, ok)

	require.NoError(t, c.Delete(ctx, "user:a"))
	assert.Empty(t, c.MGet(ctx, []string{"user:a"}))
}
