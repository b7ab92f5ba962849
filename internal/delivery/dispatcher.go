// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package delivery turns a resolved catalog entry into transport actions:
// binary transfers for opaque handles, one batched message of labeled
// links for URLs.
package delivery

import (
	"context"
	"fmt"

	"github.com/reelbot/reelbot/internal/catalog"
	"github.com/reelbot/reelbot/internal/logging"
	"github.com/reelbot/reelbot/internal/metrics"
)

// LabeledLink is one quality-labeled external URL.
type LabeledLink struct {
	Label string
	URL   string
}

// Transport is the delivery capability of the chat layer.
type Transport interface {
	// SendText delivers a plain message.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendLinks delivers a message with a set of labeled actionable links.
	SendLinks(ctx context.Context, chatID int64, text string, links []LabeledLink) error

	// SendBinary redeems an opaque transfer handle as a captioned file.
	SendBinary(ctx context.Context, chatID int64, handle, caption string) error
}

// Dispatcher delivers resolved entries over a Transport.
type Dispatcher struct {
	transport Transport
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(transport Transport) *Dispatcher {
	return &Dispatcher{transport: transport}
}

// Deliver sends every artifact of entry to the chat. Transfer handles go
// first, one file each; a failed transfer is reported inline for that one
// quality and never aborts the rest. External links follow as a single
// batched message. An entry with no artifacts gets a bare acknowledgment.
func (d *Dispatcher) Deliver(ctx context.Context, chatID int64, entry *catalog.Entry) error {
	title := catalog.DisplayTitle(entry.Name)

	var links []LabeledLink
	sent := 0

	for _, q := range entry.Qualities {
		switch q.Artifact.Kind {
		case catalog.KindLink:
			links = append(links, LabeledLink{Label: q.Label, URL: q.Artifact.Value})

		case catalog.KindTransfer:
			caption := fmt.Sprintf("%s - %s", title, q.Label)
			if err := d.transport.SendBinary(ctx, chatID, q.Artifact.Value, caption); err != nil {
				metrics.DeliveriesTotal.WithLabelValues("transfer", "error").Inc()
				logging.Warn().Err(err).
					Int64("chat", chatID).
					Str("entry", entry.Name).
					Str("quality", q.Label).
					Msg("binary transfer failed")

				notice := fmt.Sprintf("Could not send the %s file. Try again later.", q.Label)
				if terr := d.transport.SendText(ctx, chatID, notice); terr != nil {
					logging.Warn().Err(terr).Int64("chat", chatID).Msg("failure notice undeliverable")
				}
				continue
			}
			metrics.DeliveriesTotal.WithLabelValues("transfer", "ok").Inc()
			sent++
		}
	}

	if len(links) > 0 {
		text := fmt.Sprintf("Found %s (external links available):", title)
		if err := d.transport.SendLinks(ctx, chatID, text, links); err != nil {
			metrics.DeliveriesTotal.WithLabelValues("link", "error").Inc()
			return fmt.Errorf("send links for %q: %w", entry.Name, err)
		}
		metrics.DeliveriesTotal.WithLabelValues("link", "ok").Inc()
		sent += len(links)
	}

	if sent == 0 && len(entry.Qualities) == 0 {
		if err := d.transport.SendText(ctx, chatID, fmt.Sprintf("Found %s.", title)); err != nil {
			return fmt.Errorf("send acknowledgment for %q: %w", entry.Name, err)
		}
	}

	return nil
}
