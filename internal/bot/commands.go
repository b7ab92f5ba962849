// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reelbot/reelbot/internal/catalog"
	"github.com/reelbot/reelbot/internal/telegram"
)

const startText = "Send me a movie name and I'll find it for you.\n\n" +
	"/request <name> - ask for a movie we don't have yet\n\n" +
	"Admin: send a file with caption name|quality, or use /addmovie."

// handleCommand parses and dispatches a /command message.
func (r *Router) handleCommand(ctx context.Context, log zerolog.Logger, msg *telegram.Message) {
	fields := strings.Fields(msg.Text)
	command := fields[0]
	args := fields[1:]

	// Commands in groups arrive as /command@botname.
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}

	switch command {
	case "/start", "/help":
		r.reply(ctx, log, msg.Chat.ID, startText)

	case "/addmovie":
		r.cmdAddMovie(ctx, log, msg, args)

	case "/request":
		r.cmdRequest(ctx, log, msg, args)

	case "/showrequests":
		r.cmdShowRequests(ctx, log, msg)

	default:
		r.reply(ctx, log, msg.Chat.ID, "Unknown command. Try /start.")
	}
}

// cmdAddMovie is the privileged direct upsert:
// /addmovie <name> <quality> <link-or-handle>.
func (r *Router) cmdAddMovie(ctx context.Context, log zerolog.Logger, msg *telegram.Message, args []string) {
	if !r.privileged(msg.From.ID) {
		r.reply(ctx, log, msg.Chat.ID, "You are not allowed to use this command.")
		return
	}
	if len(args) < 3 {
		r.reply(ctx, log, msg.Chat.ID, "Usage: /addmovie <name> <quality> <link_or_fileid>")
		return
	}

	name := catalog.Normalize(args[0])
	quality := catalog.Normalize(args[1])
	artifact, err := catalog.Classify(args[2])
	if err != nil {
		r.reply(ctx, log, msg.Chat.ID, "Usage: /addmovie <name> <quality> <link_or_fileid>")
		return
	}

	if err := r.writer.Put(ctx, name, quality, artifact); err != nil {
		log.Error().Err(err).Str("name", name).Msg("addmovie failed")
		r.reply(ctx, log, msg.Chat.ID, genericFailure)
		return
	}

	log.Info().Str("name", name).Str("quality", quality).Str("kind", string(artifact.Kind)).Msg("entry added")
	r.reply(ctx, log, msg.Chat.ID, fmt.Sprintf("Added %s - %s", catalog.DisplayTitle(name), quality))
}

// cmdRequest records an unmet request: /request <movie name>.
func (r *Router) cmdRequest(ctx context.Context, log zerolog.Logger, msg *telegram.Message, args []string) {
	if len(args) == 0 {
		r.reply(ctx, log, msg.Chat.ID, "Usage: /request <movie name>")
		return
	}

	user := msg.From.Username
	if user == "" {
		user = fmt.Sprintf("id:%d", msg.From.ID)
	}
	title := strings.Join(args, " ")

	if err := r.requests.Add(ctx, catalog.Request{User: user, Title: title}); err != nil {
		log.Error().Err(err).Msg("request logging failed")
		r.reply(ctx, log, msg.Chat.ID, genericFailure)
		return
	}

	r.reply(ctx, log, msg.Chat.ID, fmt.Sprintf("Your request for %s has been noted.", title))
}

// cmdShowRequests lists recorded requests for the admin.
func (r *Router) cmdShowRequests(ctx context.Context, log zerolog.Logger, msg *telegram.Message) {
	if !r.privileged(msg.From.ID) {
		r.reply(ctx, log, msg.Chat.ID, "Only the admin can use this command.")
		return
	}

	requests, err := r.requests.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("request listing failed")
		r.reply(ctx, log, msg.Chat.ID, genericFailure)
		return
	}
	if len(requests) == 0 {
		r.reply(ctx, log, msg.Chat.ID, "No movie requests yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Requested movies:\n\n")
	for _, req := range requests {
		fmt.Fprintf(&sb, "%s -> %s\n", req.User, req.Title)
	}
	r.reply(ctx, log, msg.Chat.ID, sb.String())
}
