// Package locker provides the exclusive-execution lock used by workflows
// marked exclusive: at most one run in flight per workflow.
package locker

import (
	"context"
	"time"
)

// Locker acquires best-effort named locks with a TTL. TryAcquire does not
// block: callers that fail to acquire skip their run.
type Locker interface {
	// TryAcquire attempts to take the named lock. When acquired is true the
	// caller must invoke release when done.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}
