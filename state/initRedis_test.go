package state

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := InitRedis(mr.Addr(), "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "probe", "ok", 0).Err())
	val, err := rdb.Get(context.Background(), "probe").Result()
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
}

func TestInitRedisFailsWhenUnreachable(t *testing.T) {
	_, err := InitRedis("127.0.0.1:1", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}

func TestInitRedisRejectsWrongPassword(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("secret")

	_, err := InitRedis(mr.Addr(), "wrong", 0)
	assert.Error(t, err)
}
