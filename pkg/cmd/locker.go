package cmd

import (
	"log/slog"

	"github.com/flowline/flowline/pkg/locker"
)

// NewLocker returns a Redis-backed locker when a URL is configured, so
// exclusive workflows stay single-flight across nodes. Without one the
// process-local locker is used.
func NewLocker(redisURL string, logger *slog.Logger) (locker.Locker, error) {
	if redisURL == "" {
		logger.Warn("No Redis URL configured, exclusive execution locks are process-local")

		return locker.NewMemoryLocker(), nil
	}

	return locker.NewRedisLocker(redisURL)
}
