package services

import (
	"context"
	"time"
)

// handOffContext keeps the request's values (trace span, logger fields) but
// drops its cancellation, so a client that disconnects right after the final
// approval cannot abort the ledger commit halfway. The ledger call gets its
// own deadline instead.
func handOffContext(ctx context.Context, ledgerTimeout time.Duration) (detached, ledger context.Context, cancel context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	detached = context.WithoutCancel(ctx)
	if ledgerTimeout <= 0 {
		ledger, cancel = context.WithCancel(detached)
		return detached, ledger, cancel
	}
	ledger, cancel = context.WithTimeout(detached, ledgerTimeout)
	return detached, ledger, cancel
}
