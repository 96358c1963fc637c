package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis connects to LOSTFOUND_TEST_REDIS_URL or skips the test.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("LOSTFOUND_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LOSTFOUND_TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisLockerExcludes(t *testing.T) {
	client := newTestRedis(t)
	l := NewRedisLocker(client, 5*time.Second)
	ctx := context.Background()
	key := "test-" + t.Name()

	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, key)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	unlock2, err := l.Lock(ctx, key)
	require.NoError(t, err)
	unlock2()
}
