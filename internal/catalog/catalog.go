// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package catalog defines the movie catalog model and its storage backends.
//
// A catalog maps a normalized movie name to an insertion-ordered set of
// quality-labeled artifacts. An artifact is either an opaque transfer handle
// (a Telegram file_id, redeemed through the transport and never parsed) or
// an external URL.
package catalog

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Sentinel errors returned by catalog stores.
var (
	// ErrNotFound indicates no entry exists under the requested key.
	ErrNotFound = errors.New("catalog: entry not found")

	// ErrEmptyArtifact indicates an artifact value with no content.
	ErrEmptyArtifact = errors.New("catalog: empty artifact value")
)

// ArtifactKind discriminates the two artifact payload kinds.
type ArtifactKind string

const (
	// KindTransfer is an opaque handle redeemed through the transport.
	KindTransfer ArtifactKind = "transfer"

	// KindLink is an external http(s) URL.
	KindLink ArtifactKind = "link"
)

// Artifact is one deliverable unit for a given quality.
type Artifact struct {
	Kind  ArtifactKind `json:"kind"`
	Value string       `json:"value"`
}

// Classify builds an Artifact from a raw stored string. A value beginning
// with http:// or https:// (after trimming) is a link; any other non-empty
// value is a transfer handle.
func Classify(raw string) (Artifact, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Artifact{}, ErrEmptyArtifact
	}
	if strings.HasPrefix(v, "http://") || strings.HasPrefix(v, "https://") {
		return Artifact{Kind: KindLink, Value: v}, nil
	}
	return Artifact{Kind: KindTransfer, Value: v}, nil
}

// Quality pairs a free-form quality label ("720p", "1080p") with its
// artifact. Entries keep qualities in insertion order.
type Quality struct {
	Label    string   `json:"label"`
	Artifact Artifact `json:"artifact"`
}

// Entry is one named catalog entry. Name is normalized (see Normalize) and
// unique within the catalog. Quality labels are unique within an entry;
// upserting an existing label replaces the artifact in place.
type Entry struct {
	Name      string    `json:"name"`
	Qualities []Quality `json:"qualities"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Quality returns the artifact stored under label, if any.
func (e *Entry) Quality(label string) (Artifact, bool) {
	for _, q := range e.Qualities {
		if q.Label == label {
			return q.Artifact, true
		}
	}
	return Artifact{}, false
}

// upsert sets label to a, replacing an existing label in place and
// appending otherwise.
func (e *Entry) upsert(label string, a Artifact) {
	for i := range e.Qualities {
		if e.Qualities[i].Label == label {
			e.Qualities[i].Artifact = a
			return
		}
	}
	e.Qualities = append(e.Qualities, Quality{Label: label, Artifact: a})
}

// Normalize canonicalizes a movie name or query for use as a catalog key:
// case-folded and stripped of surrounding whitespace.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Store is the read-only view the resolution engine consumes. Both methods
// tolerate an empty catalog.
type Store interface {
	// Get returns the entry stored under key (pre-normalized).
	// Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) (*Entry, error)

	// Keys enumerates all entry keys. No ordering guarantee.
	Keys(ctx context.Context) ([]string, error)
}

// Writer is the ingestion side used by the admin paths.
type Writer interface {
	// Put upserts quality -> artifact under the normalized name,
	// creating the entry when absent. Last write wins per quality.
	Put(ctx context.Context, name, quality string, a Artifact) error
}

// Request records one unmet lookup a caller asked to have added.
type Request struct {
	User  string    `json:"user"`
	Title string    `json:"title"`
	At    time.Time `json:"at"`
}

// RequestLog stores unmet requests for later admin review.
type RequestLog interface {
	Add(ctx context.Context, req Request) error
	List(ctx context.Context) ([]Request, error)
}
