// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package session

import (
	"context"
	"time"

	"github.com/reelbot/reelbot/internal/logging"
	"github.com/reelbot/reelbot/internal/metrics"
)

// Janitor periodically purges expired dialog slots. Expiry is already
// enforced on read; the sweep bounds memory held by callers who never
// answered. Implements suture.Service.
type Janitor struct {
	store    *Store
	interval time.Duration
}

// NewJanitor creates a Janitor. A non-positive interval defaults to one
// minute.
func NewJanitor(store *Store, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{store: store, interval: interval}
}

// Serve implements suture.Service.
func (j *Janitor) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := j.store.PurgeExpired(); removed > 0 {
				logging.Debug().Int("removed", removed).Msg("purged expired dialogs")
			}
			metrics.ActiveDialogs.Set(float64(j.store.Len()))
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (j *Janitor) String() string {
	return "session-janitor"
}
