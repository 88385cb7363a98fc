/* query_test.go
 * Contains unit tests for query.go and keys.go
 * Authors: Gamers Bot contributors
 */

package query

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"gamers-bot/api/external"
	"gamers-bot/api/shared"
	"gamers-bot/api/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() (*Client, *store.MemoryCache) {
	cache := store.NewMemoryCache()
	c := NewClient(cache, time.Minute, zerolog.Nop())
	c.RetryBackoff = 0
	return c, cache
}

// region Fetch tests

func TestFetch_ReadsThroughCache(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()
	calls := 0
	fn := func(ctx context.Context) (shared.Contest, error) {
		calls++
		return shared.Contest{ContestID: 7, Title: "Cup", CurrentTeamCount: calls}, nil
	}

	first, err := Fetch(ctx, c, ContestKey(7), NoRetry, fn)
	require.NoError(t, err)
	second, err := Fetch(ctx, c, ContestKey(7), NoRetry, fn)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	c, cache := newTestClient()
	ctx := context.Background()

	_, err := Fetch(ctx, c, "k", NoRetry, func(ctx context.Context) (int, error) {
		return 0, &external.APIError{Status: http.StatusNotFound}
	})
	require.Error(t, err)

	_, ok, _ := cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestFetch_NoRetryNeverRetries(t *testing.T) {
	c, _ := newTestClient()
	calls := 0

	_, err := Fetch(context.Background(), c, "k", NoRetry, func(ctx context.Context) (int, error) {
		calls++
		return 0, &external.APIError{Status: http.StatusBadGateway}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetch_ListRetryRetriesTransient(t *testing.T) {
	c, _ := newTestClient()
	calls := 0

	value, err := Fetch(context.Background(), c, "k", ListRetry, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, &external.APIError{Status: http.StatusServiceUnavailable}
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, value)
	assert.Equal(t, 3, calls)
}

func TestFetch_ListRetryGivesUp(t *testing.T) {
	c, _ := newTestClient()
	calls := 0

	_, err := Fetch(context.Background(), c, "k", ListRetry, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("connection reset")
	})
	require.Error(t, err)
	assert.Equal(t, ListRetry.Retry+1, calls)
}

func TestFetch_ClientErrorsAreNotRetried(t *testing.T) {
	c, _ := newTestClient()
	calls := 0

	_, err := Fetch(context.Background(), c, "k", ListRetry, func(ctx context.Context) (int, error) {
		calls++
		return 0, &external.APIError{Status: http.StatusNotFound}
	})
	require.Error(t, err)
	assert.True(t, external.IsNotFound(err))
	assert.Equal(t, 1, calls)
}

func TestFetch_RetryStopsOnCancel(t *testing.T) {
	c, _ := newTestClient()
	c.RetryBackoff = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, c, "k", ListRetry, func(ctx context.Context) (int, error) {
		return 0, &external.APIError{Status: http.StatusInternalServerError}
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestFetch_NilCache(t *testing.T) {
	c := NewClient(nil, time.Minute, zerolog.Nop())
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	Fetch(context.Background(), c, "k", NoRetry, fn)
	value, err := Fetch(context.Background(), c, "k", NoRetry, fn)
	require.NoError(t, err)
	assert.Equal(t, 2, value)
	assert.NoError(t, c.Invalidate(context.Background(), "k"))
}

// endregion

// region invalidation tests

func TestInvalidate_ForcesRefetch(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()
	calls := 0
	fn := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	Fetch(ctx, c, ContestKey(1), NoRetry, fn)
	require.NoError(t, c.Invalidate(ctx, ContestKey(1)))
	value, err := Fetch(ctx, c, ContestKey(1), NoRetry, fn)

	require.NoError(t, err)
	assert.Equal(t, 2, value)
}

func TestInvalidate_DuringFetchDropsStaleResult(t *testing.T) {
	c, cache := newTestClient()
	ctx := context.Background()
	key := ApplicationKey(1, "u1")

	// The invalidation lands while the older request is still in flight
	value, err := Fetch(ctx, c, key, NoRetry, func(ctx context.Context) (shared.MyApplication, error) {
		require.NoError(t, c.Invalidate(ctx, key))
		return shared.MyApplication{Status: shared.StatusPending}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, shared.StatusPending, value.Status)

	_, ok, _ := cache.Get(ctx, key)
	assert.False(t, ok)
}

func TestInvalidatePrefix_DuringFetchDropsStaleResult(t *testing.T) {
	c, cache := newTestClient()
	ctx := context.Background()
	key := ApplicationKey(3, "u1")

	_, err := Fetch(ctx, c, key, NoRetry, func(ctx context.Context) (int, error) {
		require.NoError(t, c.InvalidatePrefix(ctx, ApplicationPrefix(3)))
		return 1, nil
	})
	require.NoError(t, err)

	_, ok, _ := cache.Get(ctx, key)
	assert.False(t, ok)

	// A fetch started after the invalidation caches normally
	_, err = Fetch(ctx, c, key, NoRetry, func(ctx context.Context) (int, error) { return 2, nil })
	require.NoError(t, err)
	_, ok, _ = cache.Get(ctx, key)
	assert.True(t, ok)
}

func TestClient_CountersAreDroppedWhenIdle(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()

	for i := int64(1); i <= 20; i++ {
		_, err := Fetch(ctx, c, ApplicationKey(i, "u1"), NoRetry, func(ctx context.Context) (int, error) {
			require.NoError(t, c.InvalidateContest(ctx, i))
			return 1, nil
		})
		require.NoError(t, err)
		require.NoError(t, c.InvalidateContest(ctx, i))
		Put(ctx, c, ContestKey(i), 1, 0)
	}

	assert.Empty(t, c.epochs)
	assert.Empty(t, c.prefixes)
	assert.Empty(t, c.inflight)
}

func TestClient_PrefixCounterKeptWhileWatched(t *testing.T) {
	c, cache := newTestClient()
	ctx := context.Background()
	other := ApplicationKey(4, "u2")

	_, err := Fetch(ctx, c, ApplicationKey(4, "u1"), NoRetry, func(ctx context.Context) (int, error) {
		_, err := Fetch(ctx, c, other, NoRetry, func(ctx context.Context) (int, error) {
			require.NoError(t, c.InvalidatePrefix(ctx, ApplicationPrefix(4)))
			return 2, nil
		})
		require.NoError(t, err)
		assert.NotEmpty(t, c.prefixes)
		return 1, nil
	})
	require.NoError(t, err)

	_, ok, _ := cache.Get(ctx, ApplicationKey(4, "u1"))
	assert.False(t, ok)
	_, ok, _ = cache.Get(ctx, other)
	assert.False(t, ok)
	assert.Empty(t, c.prefixes)
}

func TestInvalidateContest(t *testing.T) {
	c, cache := newTestClient()
	ctx := context.Background()
	keys := []string{
		ContestKey(5),
		ApplicationKey(5, "a"),
		ApplicationKey(5, "b"),
		TeamKey(5, "a"),
		MembersKey(5, 2),
	}
	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, []byte("1"), 0))
	}
	require.NoError(t, cache.Set(ctx, ContestKey(50), []byte("1"), 0))

	require.NoError(t, c.InvalidateContest(ctx, 5))

	for _, key := range keys {
		_, ok, _ := cache.Get(ctx, key)
		assert.False(t, ok, key)
	}
	_, ok, _ := cache.Get(ctx, ContestKey(50))
	assert.True(t, ok)
}

func TestPut_ReplacesCachedValue(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()
	key := ValorantKey("u1")

	Fetch(ctx, c, key, NoRetry, func(ctx context.Context) (shared.ValorantInfo, error) {
		return shared.ValorantInfo{CurrentTierPatched: "Gold 1"}, nil
	})
	Put(ctx, c, key, shared.ValorantInfo{CurrentTierPatched: "Gold 2"}, 0)

	info, err := Fetch(ctx, c, key, NoRetry, func(ctx context.Context) (shared.ValorantInfo, error) {
		t.Fatal("expected cached value")
		return shared.ValorantInfo{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Gold 2", info.CurrentTierPatched)
}

func TestZeroValueClient(t *testing.T) {
	c := &Client{Cache: store.NewMemoryCache(), Logger: zerolog.Nop()}
	assert.NoError(t, c.Invalidate(context.Background(), "k"))
	assert.NoError(t, c.InvalidatePrefix(context.Background(), "k"))
}

// endregion

func TestDependents(t *testing.T) {
	keys := Dependents(9, "u1")
	assert.ElementsMatch(t, []string{"application:9:u1", "contest:9"}, keys)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "members:3:2", MembersKey(3, 2))
	assert.Equal(t, "team:3:u", TeamKey(3, "u"))
	assert.Equal(t, "valorant:u", ValorantKey("u"))
	assert.Equal(t, "contests:1", ContestsKey(1))
}
