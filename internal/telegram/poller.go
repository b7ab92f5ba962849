// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package telegram

import (
	"context"
	"errors"
	"time"

	"github.com/reelbot/reelbot/internal/logging"
)

// UpdateHandler consumes one inbound update. Handler errors are logged and
// never stop the poll loop; a broken update must not take the bot down.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Poller long-polls getUpdates and dispatches each update to the handler.
// It implements suture.Service; transient API failures back off and retry,
// and the supervisor restarts the poller if it ever returns.
type Poller struct {
	client      *Client
	handler     UpdateHandler
	pollTimeout int
	offset      int64
}

// NewPoller creates a Poller. pollTimeout is the long-poll duration in
// seconds.
func NewPoller(client *Client, handler UpdateHandler, pollTimeout int) *Poller {
	if pollTimeout <= 0 {
		pollTimeout = 30
	}
	return &Poller{client: client, handler: handler, pollTimeout: pollTimeout}
}

// Serve implements suture.Service. Returns ctx.Err() on shutdown.
func (p *Poller) Serve(ctx context.Context) error {
	logging.Info().Int("poll_timeout", p.pollTimeout).Msg("update poller started")

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := p.client.GetUpdates(ctx, p.offset, p.pollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}

			delay := retryDelay(err, backoff)
			logging.Warn().Err(err).Dur("backoff", delay).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			if backoff < maxPollBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, update := range updates {
			if update.UpdateID >= p.offset {
				p.offset = update.UpdateID + 1
			}
			p.handler.HandleUpdate(ctx, update)
		}
	}
}

// maxPollBackoff caps the wait between failed poll attempts.
const maxPollBackoff = 30 * time.Second

// retryDelay picks the wait before the next poll attempt after err. A rate
// limit names its own delay; a non-transient API error (bad token, revoked
// bot) will not heal on retry, so it polls at the cap instead of hammering.
func retryDelay(err error, backoff time.Duration) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			return apiErr.RetryAfter
		}
		if !apiErr.Transient() {
			return maxPollBackoff
		}
	}
	return backoff
}

// String implements fmt.Stringer for supervisor logging.
func (p *Poller) String() string {
	return "telegram-poller"
}
