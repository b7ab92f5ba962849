// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package bot routes inbound Telegram updates: commands, admin file
// captures, and free-text queries for the resolution engine.
package bot

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelbot/reelbot/internal/catalog"
	"github.com/reelbot/reelbot/internal/delivery"
	"github.com/reelbot/reelbot/internal/logging"
	"github.com/reelbot/reelbot/internal/metrics"
	"github.com/reelbot/reelbot/internal/resolve"
	"github.com/reelbot/reelbot/internal/session"
	"github.com/reelbot/reelbot/internal/telegram"
)

const genericFailure = "Something went wrong on our side. Please try again."

// Router dispatches one update at a time per poller; distinct callers may
// be handled concurrently by future transports, which the engine and
// session store already tolerate.
type Router struct {
	engine     *resolve.Engine
	dispatcher *delivery.Dispatcher
	transport  delivery.Transport
	writer     catalog.Writer
	requests   catalog.RequestLog
	sessions   *session.Store
	admins     map[int64]struct{}
}

// NewRouter wires the router to its collaborators. adminIDs is the
// privileged caller allowlist.
func NewRouter(
	engine *resolve.Engine,
	dispatcher *delivery.Dispatcher,
	transport delivery.Transport,
	writer catalog.Writer,
	requests catalog.RequestLog,
	sessions *session.Store,
	adminIDs []int64,
) *Router {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Router{
		engine:     engine,
		dispatcher: dispatcher,
		transport:  transport,
		writer:     writer,
		requests:   requests,
		sessions:   sessions,
		admins:     admins,
	}
}

// privileged reports whether the caller may mutate the catalog.
func (r *Router) privileged(callerID int64) bool {
	_, ok := r.admins[callerID]
	return ok
}

// HandleUpdate implements telegram.UpdateHandler.
func (r *Router) HandleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
		return
	}

	log := logging.With().
		Str("correlation_id", uuid.NewString()).
		Int64("caller", msg.From.ID).
		Int64("chat", msg.Chat.ID).
		Logger()

	if handle, ok := msg.FileID(); ok {
		metrics.UpdatesTotal.WithLabelValues("file").Inc()
		r.handleFile(ctx, log, msg, handle)
		return
	}

	if msg.IsCommand() {
		metrics.UpdatesTotal.WithLabelValues("command").Inc()
		r.handleCommand(ctx, log, msg)
		return
	}

	if msg.Text != "" {
		metrics.UpdatesTotal.WithLabelValues("text").Inc()
		r.handleText(ctx, log, msg)
		return
	}

	metrics.UpdatesTotal.WithLabelValues("other").Inc()
}

// handleText runs the resolution engine and acts on its plan.
func (r *Router) handleText(ctx context.Context, log zerolog.Logger, msg *telegram.Message) {
	plan, err := r.engine.Resolve(ctx, msg.From.ID, msg.Text, r.privileged(msg.From.ID))
	if err != nil {
		log.Error().Err(err).Msg("resolution failed")
		r.reply(ctx, log, msg.Chat.ID, genericFailure)
		return
	}

	switch plan.Kind {
	case resolve.PlanDeliver:
		if err := r.dispatcher.Deliver(ctx, msg.Chat.ID, plan.Entry); err != nil {
			log.Error().Err(err).Str("entry", plan.Entry.Name).Msg("delivery failed")
			r.reply(ctx, log, msg.Chat.ID, genericFailure)
		}
	default:
		r.reply(ctx, log, msg.Chat.ID, plan.Text)
	}
}

// handleFile captures a media upload from a privileged caller. A caption in
// name|quality form commits immediately; otherwise the handle is parked and
// the next text message is expected to carry the metadata.
func (r *Router) handleFile(ctx context.Context, log zerolog.Logger, msg *telegram.Message, handle string) {
	if !r.privileged(msg.From.ID) {
		r.reply(ctx, log, msg.Chat.ID, "Only the admin can upload files to the catalog.")
		return
	}

	if name, quality, ok := strings.Cut(strings.TrimSpace(msg.Caption), "|"); ok {
		artifact, err := catalog.Classify(handle)
		if err != nil {
			log.Error().Err(err).Msg("upload carried empty handle")
			r.reply(ctx, log, msg.Chat.ID, genericFailure)
			return
		}

		name = catalog.Normalize(name)
		quality = catalog.Normalize(quality)
		if err := r.writer.Put(ctx, name, quality, artifact); err != nil {
			log.Error().Err(err).Msg("caption ingest failed")
			r.reply(ctx, log, msg.Chat.ID, genericFailure)
			return
		}

		log.Info().Str("name", name).Str("quality", quality).Msg("file ingested via caption")
		r.reply(ctx, log, msg.Chat.ID, "Saved "+catalog.DisplayTitle(name)+" - "+quality+" (file stored).")
		return
	}

	r.sessions.PutIngest(msg.From.ID, handle)
	r.reply(ctx, log, msg.Chat.ID, "File received. Now reply with the movie name and quality as: name|quality")
}

// reply sends text, logging a failed send instead of propagating it.
func (r *Router) reply(ctx context.Context, log zerolog.Logger, chatID int64, text string) {
	if err := r.transport.SendText(ctx, chatID, text); err != nil {
		log.Warn().Err(err).Msg("reply undeliverable")
	}
}
