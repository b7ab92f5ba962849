// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package catalog

import (
	"errors"
	"sync"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ArtifactKind
		wantErr bool
	}{
		{"http link", "http://example.com/movie", KindLink, false},
		{"https link", "https://example.com/movie", KindLink, false},
		{"file handle", "BQACAgQAAxkBAAIB", KindTransfer, false},
		{"handle containing http later", "id-http://x", KindTransfer, false},
		{"link with surrounding whitespace", "  https://example.com/m  ", KindLink, false},
		{"handle with surrounding whitespace", "  BQACAgQ  ", KindTransfer, false},
		{"empty", "", KindTransfer, true},
		{"whitespace only", "   ", KindTransfer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Classify(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrEmptyArtifact) {
					t.Fatalf("Classify(%q) err = %v, want ErrEmptyArtifact", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Classify(%q) returned error: %v", tt.raw, err)
			}
			if got.Kind != tt.want {
				t.Errorf("Classify(%q).Kind = %q, want %q", tt.raw, got.Kind, tt.want)
			}
			if got.Value == "" {
				t.Errorf("Classify(%q).Value is empty", tt.raw)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Inception", "inception"},
		{"  The Matrix  ", "the matrix"},
		{"ALREADY lower", "already lower"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("matrix reloaded"); got != "Matrix Reloaded" {
		t.Errorf("DisplayTitle = %q, want Matrix Reloaded", got)
	}
}

func TestDisplayTitleConcurrent(t *testing.T) {
	// Distinct callers resolve and deliver concurrently, so titling must
	// be safe without external locking. Run under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := DisplayTitle("matrix reloaded"); got != "Matrix Reloaded" {
					t.Errorf("DisplayTitle = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestEntry_QualityLookup(t *testing.T) {
	e := &Entry{Name: "inception"}
	e.upsert("720p", Artifact{Kind: KindLink, Value: "https://x/1"})
	e.upsert("1080p", Artifact{Kind: KindTransfer, Value: "file-1"})

	if a, ok := e.Quality("720p"); !ok || a.Value != "https://x/1" {
		t.Errorf("Quality(720p) = %+v, %v", a, ok)
	}
	if _, ok := e.Quality("4k"); ok {
		t.Error("Quality(4k) should be absent")
	}
}

func TestEntry_UpsertKeepsInsertionOrderAndLastWriteWins(t *testing.T) {
	e := &Entry{Name: "inception"}
	e.upsert("720p", Artifact{Kind: KindLink, Value: "https://x/old"})
	e.upsert("1080p", Artifact{Kind: KindTransfer, Value: "file-1"})
	e.upsert("720p", Artifact{Kind: KindTransfer, Value: "file-2"})

	if len(e.Qualities) != 2 {
		t.Fatalf("len(Qualities) = %d, want 2", len(e.Qualities))
	}
	if e.Qualities[0].Label != "720p" || e.Qualities[1].Label != "1080p" {
		t.Errorf("insertion order lost: %+v", e.Qualities)
	}
	if e.Qualities[0].Artifact.Value != "file-2" {
		t.Errorf("last write did not win: %+v", e.Qualities[0])
	}
}
