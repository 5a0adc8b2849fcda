package database

import (
	"context"
	"fmt"
	"testing"

	"cdr.dev/slog/v3/sloggers/slogtest"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := slogtest.Make(t, nil)

	client, err := NewRedisClient(context.Background(), logger, fmt.Sprintf("redis://%s/0", mr.Addr()))

	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})

	_, err := NewRedisClient(context.Background(), logger, "not-a-url")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing redis URL")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	logger := slogtest.Make(t, &slogtest.Options{IgnoreErrors: true})

	_, err := NewRedisClient(context.Background(), logger, fmt.Sprintf("redis://%s/0", addr))

	require.Error(t, err)
	assert.Contains(t, err.Error(), addr)
}
