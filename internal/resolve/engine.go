// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package resolve implements the query-resolution state machine.
//
// Every inbound free-text message enters Resolve with the caller's identity.
// A pending dialog for that caller always wins: the text is interpreted as
// an answer to it before anything else. Otherwise the text is a fresh query,
// tried first as an exact catalog key and then against the fuzzy matcher,
// which may open a confirmation (one candidate) or selection (two or three
// candidates) dialog.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/reelbot/reelbot/internal/catalog"
	"github.com/reelbot/reelbot/internal/logging"
	"github.com/reelbot/reelbot/internal/match"
	"github.com/reelbot/reelbot/internal/metrics"
	"github.com/reelbot/reelbot/internal/session"
)

// PlanKind discriminates what the caller of Resolve must do next.
type PlanKind int

const (
	// PlanText is a terminal message: not-found, ingest confirmation, or
	// a corrective prompt that keeps an existing dialog open.
	PlanText PlanKind = iota

	// PlanPrompt is a question that opened or continues a dialog.
	PlanPrompt

	// PlanDeliver carries a resolved entry whose artifacts must be
	// delivered.
	PlanDeliver
)

// Plan is the outcome of one resolution pass.
type Plan struct {
	Kind  PlanKind
	Text  string
	Entry *catalog.Entry
}

// affirmatives are the accepted yes-tokens for a confirmation dialog.
var affirmatives = map[string]struct{}{
	"yes": {}, "y": {}, "yeah": {}, "correct": {},
}

// Engine drives resolution for all callers. Safe for concurrent use;
// per-caller transitions are serialized through the session store.
type Engine struct {
	store    catalog.Store
	writer   catalog.Writer
	matcher  *match.Matcher
	sessions *session.Store
}

// NewEngine wires the engine to its collaborators.
func NewEngine(store catalog.Store, writer catalog.Writer, matcher *match.Matcher, sessions *session.Store) *Engine {
	return &Engine{store: store, writer: writer, matcher: matcher, sessions: sessions}
}

// Resolve classifies one inbound text for a caller and returns the plan.
// Returned errors are collaborator failures (storage unreachable); user
// mistakes never surface as errors, only as corrective plan text.
func (e *Engine) Resolve(ctx context.Context, callerID int64, text string, privileged bool) (*Plan, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
		metrics.ActiveDialogs.Set(float64(e.sessions.Len()))
	}()

	release := e.sessions.Acquire(callerID)
	defer release()

	// Admin ingest has priority over everything: a captured file is
	// waiting for its name|quality metadata.
	if ingest, ok := e.sessions.Ingest(callerID); ok && privileged {
		return e.answerIngest(ctx, callerID, text, ingest)
	}

	if dialog, ok := e.sessions.Dialog(callerID); ok {
		return e.answerDialog(ctx, callerID, text, dialog)
	}

	return e.freshQuery(ctx, callerID, text)
}

// answerIngest interprets text as name|quality metadata for a held handle.
// A malformed answer keeps the session so the held handle is not lost.
func (e *Engine) answerIngest(ctx context.Context, callerID int64, text string, ingest *session.AdminIngest) (*Plan, error) {
	name, quality, ok := strings.Cut(text, "|")
	if !ok {
		metrics.QueriesTotal.WithLabelValues("ingest_reprompt").Inc()
		return &Plan{Kind: PlanText, Text: "Please send in format: name|quality (e.g. inception|720p)"}, nil
	}

	artifact, err := catalog.Classify(ingest.Handle)
	if err != nil {
		// A held handle is never empty; treat as a fault, drop the slot.
		e.sessions.ClearIngest(callerID)
		return nil, fmt.Errorf("held handle invalid: %w", err)
	}

	name = catalog.Normalize(name)
	quality = catalog.Normalize(quality)
	if err := e.writer.Put(ctx, name, quality, artifact); err != nil {
		// Session intact: the admin can retry once storage recovers.
		return nil, fmt.Errorf("commit ingest: %w", err)
	}
	e.sessions.ClearIngest(callerID)

	metrics.QueriesTotal.WithLabelValues("ingest_saved").Inc()
	logging.Info().Int64("caller", callerID).Str("name", name).Str("quality", quality).Msg("ingest committed")
	return &Plan{
		Kind: PlanText,
		Text: fmt.Sprintf("Saved %s - %s (file stored).", catalog.DisplayTitle(name), quality),
	}, nil
}

// answerDialog interprets text as the answer to a pending disambiguation.
func (e *Engine) answerDialog(ctx context.Context, callerID int64, text string, dialog *session.Disambiguation) (*Plan, error) {
	answer := catalog.Normalize(text)

	// An affirmative always confirms the top candidate, even in a
	// selection dialog, where the list is ranked best-first.
	if _, ok := affirmatives[answer]; ok {
		return e.resolveCandidate(ctx, callerID, dialog.Candidates[0])
	}

	if idx, err := strconv.Atoi(answer); err == nil {
		// Prompts are 1-based; a bare "1" also confirms a single
		// candidate, consistent with the selection path.
		if idx >= 1 && idx <= len(dialog.Candidates) {
			return e.resolveCandidate(ctx, callerID, dialog.Candidates[idx-1])
		}
		metrics.QueriesTotal.WithLabelValues("range_error").Inc()
		return &Plan{Kind: PlanText, Text: "Number out of range. Reply with an option number from the list."}, nil
	}

	metrics.QueriesTotal.WithLabelValues("reprompt").Inc()
	if len(dialog.Candidates) == 1 {
		return &Plan{Kind: PlanText, Text: "Please reply with 'yes' or 1 to confirm."}, nil
	}
	return &Plan{Kind: PlanText, Text: "Please reply with 'yes' or a number from the list."}, nil
}

// resolveCandidate turns a valid answer into a delivery plan. The session
// is cleared before the lookup so a retried answer after success is a fresh
// query, never a duplicate delivery.
func (e *Engine) resolveCandidate(ctx context.Context, callerID int64, name string) (*Plan, error) {
	e.sessions.ClearDialog(callerID)

	entry, err := e.store.Get(ctx, name)
	if errors.Is(err, catalog.ErrNotFound) {
		// The catalog changed while the prompt was open.
		metrics.QueriesTotal.WithLabelValues("not_found").Inc()
		return &Plan{Kind: PlanText, Text: "Sorry, that movie is no longer available."}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", name, err)
	}

	metrics.QueriesTotal.WithLabelValues("confirmed").Inc()
	return &Plan{Kind: PlanDeliver, Entry: entry}, nil
}

// freshQuery resolves text with no dialog pending: exact hit, fuzzy
// candidates, or not found.
func (e *Engine) freshQuery(ctx context.Context, callerID int64, text string) (*Plan, error) {
	query := catalog.Normalize(text)
	if query == "" {
		return &Plan{Kind: PlanText, Text: "Send me a movie name and I'll find it for you."}, nil
	}

	entry, err := e.store.Get(ctx, query)
	if err == nil {
		metrics.QueriesTotal.WithLabelValues("exact_hit").Inc()
		return &Plan{Kind: PlanDeliver, Entry: entry}, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return nil, fmt.Errorf("lookup %q: %w", query, err)
	}

	keys, err := e.store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate catalog: %w", err)
	}

	candidates := e.matcher.Match(query, keys)
	metrics.FuzzyCandidates.Observe(float64(len(candidates)))

	switch len(candidates) {
	case 0:
		metrics.QueriesTotal.WithLabelValues("not_found").Inc()
		return &Plan{Kind: PlanText, Text: "Sorry, movie not available. Use /request to ask for it."}, nil

	case 1:
		e.sessions.PutDialog(callerID, []string{candidates[0].Key})
		metrics.QueriesTotal.WithLabelValues("confirm_prompt").Inc()
		return &Plan{
			Kind: PlanPrompt,
			Text: fmt.Sprintf("Did you mean %s? (yes/no)", catalog.DisplayTitle(candidates[0].Key)),
		}, nil

	default:
		names := make([]string, len(candidates))
		var sb strings.Builder
		sb.WriteString("Did you mean:\n\n")
		for i, c := range candidates {
			names[i] = c.Key
			fmt.Fprintf(&sb, "%d. %s\n", i+1, catalog.DisplayTitle(c.Key))
		}
		sb.WriteString("\nReply with a number.")

		e.sessions.PutDialog(callerID, names)
		metrics.QueriesTotal.WithLabelValues("select_prompt").Inc()
		return &Plan{Kind: PlanPrompt, Text: sb.String()}, nil
	}
}
