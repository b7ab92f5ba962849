// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage.
const (
	movieKeyPrefix   = "movie:"
	requestKeyPrefix = "request:"

	// requestKeyLayout is fixed-width (RFC3339Nano trims trailing zeros,
	// which would break lexicographic time ordering of request keys).
	requestKeyLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// BadgerStore implements Store, Writer and RequestLog on BadgerDB.
// Entries are stored as JSON under movie:<normalized name>; unmet requests
// under request:<fixed-width timestamp>, which keeps them in arrival order
// when iterated.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a catalog store over an open Badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Get returns the entry stored under key.
func (s *BadgerStore) Get(ctx context.Context, key string) (*Entry, error) {
	var entry Entry

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(movieKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get entry: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Keys enumerates all entry keys via a keys-only prefix scan. Badger
// iterates in lexicographic key order.
func (s *BadgerStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(movieKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := string(it.Item().Key())
			keys = append(keys, strings.TrimPrefix(k, movieKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate keys: %w", err)
	}
	return keys, nil
}

// Put upserts quality -> artifact under name. Read-modify-write runs in a
// single Badger transaction so concurrent admin writes cannot lose qualities.
func (s *BadgerStore) Put(ctx context.Context, name, quality string, a Artifact) error {
	key := []byte(movieKeyPrefix + Normalize(name))

	return s.db.Update(func(txn *badger.Txn) error {
		entry := Entry{Name: Normalize(name)}

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// new entry
		case err != nil:
			return fmt.Errorf("read entry: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode entry: %w", err)
			}
		}

		entry.upsert(strings.TrimSpace(quality), a)
		entry.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(&entry)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Add appends an unmet request.
func (s *BadgerStore) Add(ctx context.Context, req Request) error {
	if req.At.IsZero() {
		req.At = time.Now().UTC()
	}

	data, err := json.Marshal(&req)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	key := []byte(requestKeyPrefix + req.At.Format(requestKeyLayout))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// List returns all recorded requests in arrival order.
func (s *BadgerStore) List(ctx context.Context) ([]Request, error) {
	var requests []Request

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(requestKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var req Request
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &req)
			}); err != nil {
				return fmt.Errorf("decode request: %w", err)
			}
			requests = append(requests, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return requests, nil
}
