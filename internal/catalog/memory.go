// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store/Writer/RequestLog. It backs tests and
// development runs without a Badger directory.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	requests []Request
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Get returns the entry stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy so callers cannot mutate stored state.
	cp := *entry
	cp.Qualities = append([]Quality(nil), entry.Qualities...)
	return &cp, nil
}

// Keys enumerates all entry keys in sorted order, mirroring Badger's
// lexicographic iteration so both backends rank fuzzy ties identically.
func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Put upserts quality -> artifact under the normalized name.
func (s *MemoryStore) Put(ctx context.Context, name, quality string, a Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Normalize(name)
	entry, ok := s.entries[key]
	if !ok {
		entry = &Entry{Name: key}
		s.entries[key] = entry
	}
	entry.upsert(strings.TrimSpace(quality), a)
	entry.UpdatedAt = time.Now().UTC()
	return nil
}

// Add appends an unmet request.
func (s *MemoryStore) Add(ctx context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.At.IsZero() {
		req.At = time.Now().UTC()
	}
	s.requests = append(s.requests, req)
	return nil
}

// List returns all recorded requests in arrival order.
func (s *MemoryStore) List(ctx context.Context) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Request(nil), s.requests...), nil
}
