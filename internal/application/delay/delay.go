// Package delay simulates the network latency of the mocked auth and
// checkout backends.
package delay

import (
	"context"
	"fmt"
	"time"

	"github.com/xgrltd/storefront/internal/domain/shared"
)

// Wait blocks for d or until ctx is done. A cancelled wait returns an error
// matching both shared.ErrOperationCancelled and ctx.Err().
func Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return Cancelled(err)
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return Cancelled(ctx.Err())
	}
}

// Cancelled wraps cause so it matches shared.ErrOperationCancelled.
func Cancelled(cause error) error {
	return fmt.Errorf("%w: %w", shared.ErrOperationCancelled, cause)
}
