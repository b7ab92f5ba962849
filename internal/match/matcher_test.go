// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package match

import (
	"testing"
)

func TestScore_ExactMatch(t *testing.T) {
	if got := Score("inception", "inception"); got != 100 {
		t.Errorf("Score(equal) = %d, want 100", got)
	}
	if got := Score("  Inception ", "inception"); got != 100 {
		t.Errorf("Score should normalize case and whitespace, got %d", got)
	}
}

func TestScore_Typo(t *testing.T) {
	got := Score("incepton", "inception")
	if got < 60 {
		t.Errorf("Score(incepton, inception) = %d, want >= 60", got)
	}
	if got >= 100 {
		t.Errorf("Score(incepton, inception) = %d, want < 100", got)
	}
}

func TestScore_TokenReordering(t *testing.T) {
	got := Score("reloaded matrix", "matrix reloaded")
	if got != 100 {
		t.Errorf("Score with reordered tokens = %d, want 100", got)
	}
}

func TestScore_ShortQueryAgainstLongTitle(t *testing.T) {
	// The partial window keeps an abbreviated query in range of a long
	// title, but discounted below a direct hit.
	long := Score("matrx", "matrix reloaded")
	if long < 60 {
		t.Errorf("Score(matrx, matrix reloaded) = %d, want >= 60", long)
	}
	direct := Score("matrx", "matrix")
	if direct <= long {
		t.Errorf("direct match %d should outscore partial match %d", direct, long)
	}
}

func TestScore_Dissimilar(t *testing.T) {
	if got := Score("inception", "titanic"); got >= 60 {
		t.Errorf("Score(inception, titanic) = %d, want < 60", got)
	}
}

func TestMatch_EmptyInputs(t *testing.T) {
	m := New(60, 3)

	if got := m.Match("query", nil); got != nil {
		t.Errorf("Match with no keys = %v, want nil", got)
	}
	if got := m.Match("", []string{"a", "b"}); got != nil {
		t.Errorf("Match with empty query = %v, want nil", got)
	}
}

func TestMatch_ThresholdFiltering(t *testing.T) {
	m := New(60, 3)
	keys := []string{"inception", "titanic", "avatar"}

	got := m.Match("incepton", keys)
	if len(got) != 1 {
		t.Fatalf("Match returned %d candidates, want 1: %v", len(got), got)
	}
	if got[0].Key != "inception" {
		t.Errorf("Match[0].Key = %q, want inception", got[0].Key)
	}
	if got[0].Score < 60 {
		t.Errorf("Match[0].Score = %d, want >= 60", got[0].Score)
	}
}

func TestMatch_MultipleCandidatesRankedByScore(t *testing.T) {
	m := New(60, 3)
	keys := []string{"matrix", "matrix reloaded", "inception"}

	got := m.Match("matrx", keys)
	if len(got) != 2 {
		t.Fatalf("Match returned %d candidates, want 2: %v", len(got), got)
	}
	if got[0].Key != "matrix" {
		t.Errorf("best candidate = %q, want matrix", got[0].Key)
	}
	if got[1].Key != "matrix reloaded" {
		t.Errorf("second candidate = %q, want matrix reloaded", got[1].Key)
	}
	if got[0].Score < got[1].Score {
		t.Errorf("candidates out of order: %d < %d", got[0].Score, got[1].Score)
	}
}

func TestMatch_LimitTruncation(t *testing.T) {
	m := New(60, 3)
	keys := []string{"terminator", "terminator 2", "terminator 3", "terminator genisys"}

	got := m.Match("terminator", keys)
	if len(got) != 3 {
		t.Errorf("Match returned %d candidates, want limit 3", len(got))
	}
}

func TestMatch_StableTieOrder(t *testing.T) {
	m := New(60, 2)
	// Identical scores against the query: input order must hold.
	keys := []string{"abcd x", "abcd y"}

	got := m.Match("abcd z", keys)
	if len(got) != 2 {
		t.Fatalf("Match returned %d candidates, want 2: %v", len(got), got)
	}
	if got[0].Key != "abcd x" || got[1].Key != "abcd y" {
		t.Errorf("tie order not stable: %v", got)
	}
}

func TestNew_DefaultsApplied(t *testing.T) {
	m := New(0, 0)
	if m.minScore != DefaultMinScore {
		t.Errorf("minScore = %d, want %d", m.minScore, DefaultMinScore)
	}
	if m.limit != DefaultLimit {
		t.Errorf("limit = %d, want %d", m.limit, DefaultLimit)
	}

	m = New(150, -1)
	if m.minScore != DefaultMinScore || m.limit != DefaultLimit {
		t.Errorf("out-of-range args not defaulted: %+v", m)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"incepton", "inception", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
