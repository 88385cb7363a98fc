/* query.go
 * Contains the read-through query layer that sits between the api facade and the platform client. Results are
 * cached JSON encoded under string keys, invalidations bump a per key epoch so a fetch that started before an
 * invalidation never writes its older result back into the cache
 * Authors: Gamers Bot contributors
 */

package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"gamers-bot/api/external"
	"gamers-bot/api/store"

	"github.com/rs/zerolog"
)

// Options controls retry and caching of a single query
type Options struct {
	// Retry is the number of extra attempts made after a transient failure
	Retry int
	// TTL overrides the client default. Zero uses the default
	TTL time.Duration
}

var (
	// NoRetry is used for status, team, point and rank reads so a 404 is never masked
	NoRetry = Options{Retry: 0}
	// ListRetry is used for paginated list reads
	ListRetry = Options{Retry: 3}
)

const maxRetryBackoff = 2 * time.Second

// Client runs queries through a shared cache
type Client struct {
	Cache        store.QueryCache
	Logger       zerolog.Logger
	TTL          time.Duration
	RetryBackoff time.Duration

	mu       sync.Mutex
	epochs   map[string]uint64
	prefixes map[string]uint64
	inflight map[string]int
}

// NewClient creates a query client. A nil cache disables caching, every Fetch then goes to the backend
func NewClient(cache store.QueryCache, ttl time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		Cache:        cache,
		Logger:       logger,
		TTL:          ttl,
		RetryBackoff: 200 * time.Millisecond,
		epochs:       make(map[string]uint64),
		prefixes:     make(map[string]uint64),
		inflight:     make(map[string]int),
	}
}

// epochLocked returns the invalidation count seen by key. Counters only grow while a fetch of a key they touch is
// in flight, so the sum changes iff an invalidation touching key happened during it. c.mu must be held
func (c *Client) epochLocked(key string) uint64 {
	e := c.epochs[key]
	for prefix, n := range c.prefixes {
		if strings.HasPrefix(key, prefix) {
			e += n
		}
	}
	return e
}

func (c *Client) initLocked() {
	if c.epochs == nil {
		c.epochs = make(map[string]uint64)
	}
	if c.prefixes == nil {
		c.prefixes = make(map[string]uint64)
	}
	if c.inflight == nil {
		c.inflight = make(map[string]int)
	}
}

// begin registers a write in progress for key and returns the epoch it started at
func (c *Client) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initLocked()
	c.inflight[key]++
	return c.epochLocked(key)
}

// end deregisters a write for key. Counters no in flight key can observe are dropped
func (c *Client) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight[key] > 1 {
		c.inflight[key]--
		return
	}
	delete(c.inflight, key)
	delete(c.epochs, key)
	for prefix := range c.prefixes {
		if strings.HasPrefix(key, prefix) && !c.watchedLocked(prefix) {
			delete(c.prefixes, prefix)
		}
	}
}

// watchedLocked reports whether a key starting with prefix is in flight. c.mu must be held
func (c *Client) watchedLocked(prefix string) bool {
	for key := range c.inflight {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Fetch returns the cached value for key, or calls fn and caches its result.
// Preconditions: Receives context, query client, cache key, options and the backend call
// Postconditions: Returns the value or the error of the last attempt. Cache failures are logged and never returned
func Fetch[T any](ctx context.Context, c *Client, key string, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if c.Cache != nil {
		raw, ok, err := c.Cache.Get(ctx, key)
		if err != nil {
			c.Logger.Warn().Err(err).Str("key", key).Msg("query cache read failed")
		} else if ok {
			var cached T
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			c.Logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		}
	}

	start := c.begin(key)
	defer c.end(key)
	value, err := retry(ctx, c, opts.Retry, fn)
	if err != nil {
		return zero, err
	}

	c.store(ctx, key, start, value, opts.TTL)
	return value, nil
}

// Put writes value under key, replacing whatever is cached. In flight fetches for key will not overwrite it
func Put[T any](ctx context.Context, c *Client, key string, value T, ttl time.Duration) {
	c.mu.Lock()
	c.initLocked()
	if c.inflight[key] > 0 {
		c.epochs[key]++
	}
	c.inflight[key]++
	start := c.epochLocked(key)
	c.mu.Unlock()
	defer c.end(key)

	c.store(ctx, key, start, value, ttl)
}

// store writes value if no invalidation touched key since start. The lock is held across the write so an
// invalidation cannot slip in between the check and the set
func (c *Client) store(ctx context.Context, key string, start uint64, value any, ttl time.Duration) {
	if c.Cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("query result not cacheable")
		return
	}
	if ttl <= 0 {
		ttl = c.TTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epochLocked(key) != start {
		c.Logger.Debug().Str("key", key).Msg("dropping result of invalidated query")
		return
	}
	if err := c.Cache.Set(ctx, key, raw, ttl); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("query cache write failed")
	}
}

func retry[T any](ctx context.Context, c *Client, retries int, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	backoff := c.RetryBackoff
	for attempt := 0; ; attempt++ {
		value, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		if attempt >= retries || !external.IsTransient(err) {
			return zero, err
		}

		c.Logger.Debug().Err(err).Int("attempt", attempt+1).Msg("retrying query")
		if backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, fmt.Errorf("retry aborted: %w", ctx.Err())
			case <-timer.C:
			}
			backoff = min(backoff*2, maxRetryBackoff)
		}
	}
}

// Invalidate drops keys from the cache and stops in flight fetches of them from writing back
func (c *Client) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	c.mu.Lock()
	c.initLocked()
	for _, key := range keys {
		if c.inflight[key] > 0 {
			c.epochs[key]++
		}
	}
	c.mu.Unlock()

	if c.Cache == nil {
		return nil
	}
	if err := c.Cache.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("invalidating %v: %w", keys, err)
	}
	return nil
}

// InvalidatePrefix drops every key starting with prefix
func (c *Client) InvalidatePrefix(ctx context.Context, prefix string) error {
	c.mu.Lock()
	c.initLocked()
	if c.watchedLocked(prefix) {
		c.prefixes[prefix]++
	}
	c.mu.Unlock()

	if c.Cache == nil {
		return nil
	}
	if err := c.Cache.DeletePrefix(ctx, prefix); err != nil {
		return fmt.Errorf("invalidating prefix %s: %w", prefix, err)
	}
	return nil
}

// InvalidateContest clears every contest scoped query: the contest record, all users' applications and teams,
// and every members page
func (c *Client) InvalidateContest(ctx context.Context, contestID int64) error {
	if err := c.Invalidate(ctx, ContestKey(contestID)); err != nil {
		return err
	}
	for _, prefix := range []string{
		ApplicationPrefix(contestID),
		TeamPrefix(contestID),
		MembersPrefix(contestID),
	} {
		if err := c.InvalidatePrefix(ctx, prefix); err != nil {
			return err
		}
	}
	return nil
}
