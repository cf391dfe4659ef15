package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLimit(t *testing.T) {
	t.Run("allows while under the limit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectIncr("ascent:ratelimit:test-key").SetVal(3)
		mock.ExpectExpire("ascent:ratelimit:test-key", time.Minute).SetVal(true)

		allowed, retryAfter, err := svc.CheckLimit(context.Background(), "test-key", 5, time.Minute)

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("blocks once over the limit and reports the window reset", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectIncr("ascent:ratelimit:test-key").SetVal(6)
		mock.ExpectExpire("ascent:ratelimit:test-key", time.Minute).SetVal(true)
		mock.ExpectTTL("ascent:ratelimit:test-key").SetVal(42 * time.Second)

		allowed, retryAfter, err := svc.CheckLimit(context.Background(), "test-key", 5, time.Minute)

		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, 42*time.Second, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("surfaces redis failures", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		svc := NewRateLimitService(client)

		mock.ExpectIncr("ascent:ratelimit:test-key").SetErr(errors.New("connection refused"))

		_, _, err := svc.CheckLimit(context.Background(), "test-key", 5, time.Minute)

		assert.Error(t, err)
	})
}
