/* store_interface.go
 * Contains the interfaces for dependency injection and testing
 * Authors: Gamers Bot contributors
 */

package store

import (
	"context"
	"time"

	"gamers-bot/api/shared"
)

// Interface defines the session methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	GetCredentials(ctx context.Context, userID string) (shared.Credentials, error)
	StoreCredentials(ctx context.Context, userID string, creds shared.Credentials) error
	DeleteCredentials(ctx context.Context, userID string) error
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// QueryCache is a key value cache for encoded query results. Get reports a miss with false and no error.
// Implementations must be safe for concurrent use
type QueryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

var (
	_ QueryCache = (*MemoryCache)(nil)
	_ QueryCache = (*RedisCache)(nil)
)
