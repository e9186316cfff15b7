package testsupport

import (
	"context"
	"time"

	"curator/internal/services/retry"
)

// FastRetry keeps the default attempt count but skips the real waits.
func FastRetry() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		Sleep: func(context.Context, time.Duration) error {
			return nil
		},
	}
}
