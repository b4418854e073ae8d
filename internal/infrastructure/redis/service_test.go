package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(t *testing.T) *Service {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	svc := Connect(context.Background(), url, "")
	require.NotNil(t, svc, "could not connect to %s", url)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewServiceWithoutURL(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	assert.Nil(t, NewService())
}

func TestConnectRejectsBadURL(t *testing.T) {
	assert.Nil(t, Connect(context.Background(), "redis://:::bad", ""))
}

func TestSetGetDelete(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	key := "parley:test:" + time.Now().Format(time.RFC3339Nano)

	require.NoError(t, svc.Set(ctx, key, "value", time.Minute))

	got, err := svc.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	require.NoError(t, svc.Delete(ctx, key))
	_, err = svc.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}
