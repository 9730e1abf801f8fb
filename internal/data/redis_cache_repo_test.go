package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetdesk/vetdesk/internal/testutil"
)

func TestRedisCacheRepo_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	defer client.Close()

	repo := NewRedisCacheRepo(client, RedisCacheRepoOptions{Namespace: "vetdesk-test"})
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		value := []byte(`{"id":"1"}`)
		require.NoError(t, repo.Set(ctx, "doc:customers:1", value, 5*time.Minute))

		result, err := repo.Get(ctx, "doc:customers:1")
		require.NoError(t, err)
		assert.Equal(t, value, result)

		// stored under the namespace
		ttl := client.TTL(ctx, "vetdesk-test:doc:customers:1").Val()
		assert.True(t, ttl > 0 && ttl <= 5*time.Minute)
	})

	t.Run("get missing key", func(t *testing.T) {
		result, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "to-delete", []byte("x"), time.Minute))

		deleted, err := repo.Delete(ctx, "to-delete")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "to-delete")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("set if not exists", func(t *testing.T) {
		wasSet, err := repo.SetIfNotExists(ctx, "gen:dogs", []byte("a"), 0)
		require.NoError(t, err)
		assert.True(t, wasSet)

		wasSet, err = repo.SetIfNotExists(ctx, "gen:dogs", []byte("b"), 0)
		require.NoError(t, err)
		assert.False(t, wasSet)

		result, err := repo.Get(ctx, "gen:dogs")
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), result)

		// zero TTL never expires
		assert.Equal(t, time.Duration(-1), client.TTL(ctx, "vetdesk-test:gen:dogs").Val())
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_EmptyKey(t *testing.T) {
	// Validation happens before any network call, so a client with no server is fine.
	repo := NewRedisCacheRepo(nil, RedisCacheRepoOptions{})
	ctx := context.Background()

	require.ErrorIs(t, repo.Set(ctx, "", []byte("v"), time.Minute), ErrEmptyCacheKey)

	_, err := repo.Get(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCacheKey)

	_, err = repo.Delete(ctx, "")
	require.ErrorIs(t, err, ErrEmptyCacheKey)

	_, err = repo.SetIfNotExists(ctx, "", []byte("v"), time.Minute)
	require.ErrorIs(t, err, ErrEmptyCacheKey)
}
