// Package cooldown enforces per-key waiting periods shared by all requests,
// such as the reward claim cooldown and the gift code window.
package cooldown

import (
	"context"
	"time"
)

// Store grants a key for ttl. While the key is held, Acquire reports false
// and the time left.
type Store interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ok bool, remaining time.Duration, err error)
	Release(ctx context.Context, key string) error
}
