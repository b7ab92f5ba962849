// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package session tracks per-caller pending dialogs.
//
// A caller has at most one pending slot of each kind at a time: a
// disambiguation awaiting a yes/number answer, or an admin ingest awaiting
// name|quality metadata for a captured file. Pending dialogs are soft
// state: a new query supersedes them and a TTL discards stale ones so a
// forgotten prompt cannot resolve against a catalog that has since changed.
package session

import (
	"sync"
	"time"
)

// DefaultTTL is how long an unanswered dialog stays valid.
const DefaultTTL = 10 * time.Minute

// Disambiguation holds the candidates offered to a caller, in prompt order.
type Disambiguation struct {
	Candidates []string
	CreatedAt  time.Time
}

// AdminIngest holds a captured transfer handle awaiting name|quality
// metadata from a privileged caller.
type AdminIngest struct {
	Handle    string
	CreatedAt time.Time
}

// callerLock is a refcounted per-caller transition mutex. The refcount
// tracks holders and waiters so the map entry can be dropped once the last
// one releases, keeping the map bounded by concurrent callers rather than
// by every caller ID ever seen.
type callerLock struct {
	mu   sync.Mutex
	refs int
}

// Store is a concurrent per-caller dialog store. Distinct callers may be
// served concurrently; reads and writes for a single caller are atomic,
// and Acquire serializes a full read-check-write transition per caller.
type Store struct {
	ttl time.Duration

	mu       sync.Mutex
	dialogs  map[int64]*Disambiguation
	ingests  map[int64]*AdminIngest
	callerMu map[int64]*callerLock
}

// NewStore creates a Store. A non-positive ttl falls back to DefaultTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		dialogs:  make(map[int64]*Disambiguation),
		ingests:  make(map[int64]*AdminIngest),
		callerMu: make(map[int64]*callerLock),
	}
}

// Acquire locks the caller's transition mutex and returns the release
// function. Two in-flight messages from the same caller cannot interleave
// a read-check-write on that caller's slots.
func (s *Store) Acquire(callerID int64) func() {
	s.mu.Lock()
	l, ok := s.callerMu[callerID]
	if !ok {
		l = &callerLock{}
		s.callerMu[callerID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.callerMu, callerID)
		}
		s.mu.Unlock()
	}
}

// Dialog returns the caller's pending disambiguation, if one exists and has
// not expired. An expired dialog is removed and reported as absent.
func (s *Store) Dialog(callerID int64) (*Disambiguation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dialogs[callerID]
	if !ok {
		return nil, false
	}
	if s.expired(d.CreatedAt) {
		delete(s.dialogs, callerID)
		return nil, false
	}
	return d, true
}

// PutDialog stores a disambiguation for the caller, replacing any pending
// one.
func (s *Store) PutDialog(callerID int64, candidates []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dialogs[callerID] = &Disambiguation{
		Candidates: append([]string(nil), candidates...),
		CreatedAt:  time.Now(),
	}
}

// ClearDialog removes the caller's pending disambiguation.
func (s *Store) ClearDialog(callerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dialogs, callerID)
}

// Ingest returns the caller's pending admin ingest, if one exists and has
// not expired.
func (s *Store) Ingest(callerID int64) (*AdminIngest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.ingests[callerID]
	if !ok {
		return nil, false
	}
	if s.expired(in.CreatedAt) {
		delete(s.ingests, callerID)
		return nil, false
	}
	return in, true
}

// PutIngest stores a captured handle for the caller, replacing any pending
// one.
func (s *Store) PutIngest(callerID int64, handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ingests[callerID] = &AdminIngest{Handle: handle, CreatedAt: time.Now()}
}

// ClearIngest removes the caller's pending admin ingest.
func (s *Store) ClearIngest(callerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ingests, callerID)
}

// Len reports the number of live pending dialogs of both kinds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dialogs) + len(s.ingests)
}

// PurgeExpired drops every expired slot and returns how many were removed.
// Called periodically by the janitor service; expiry is also enforced on
// read, so the sweep only bounds memory.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, d := range s.dialogs {
		if s.expired(d.CreatedAt) {
			delete(s.dialogs, id)
			removed++
		}
	}
	for id, in := range s.ingests {
		if s.expired(in.CreatedAt) {
			delete(s.ingests, id)
			removed++
		}
	}
	return removed
}

// expired reports whether a slot created at t has outlived the TTL.
// Must be called with mu held.
func (s *Store) expired(t time.Time) bool {
	return time.Since(t) > s.ttl
}
