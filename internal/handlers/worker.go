package handlers

import (
	"context"
	"time"

	"github.com/vetaris/storefront-golang/internal/storage"
	"go.uber.org/zap"
)

// purger is implemented by storage backends that need their expired
// entries removed by hand.
type purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// ProcessExpiredSessions drops expired visitor state and idle checkout
// wizards. It is run periodically by the background worker.
func (h *Handlers) ProcessExpiredSessions(ctx context.Context, maxIdle time.Duration) {
	// 1. --- Idle wizards ---
	if n := h.Wizards.PurgeIdle(time.Now(), maxIdle); n > 0 {
		h.Log.Info("discarded idle checkouts", zap.Int("count", n))
	}

	// 2. --- Expired storage rows (Redis expires on its own) ---
	p, ok := h.KV.(purger)
	if !ok {
		return
	}
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		h.Log.Error("purging expired sessions failed", zap.Error(err))
		return
	}
	if n > 0 {
		h.Log.Info("purged expired session data", zap.Int64("rows", n))
	}
}

var (
	_ purger = (*storage.MemoryStore)(nil)
	_ purger = (*storage.MySQLStore)(nil)
)
