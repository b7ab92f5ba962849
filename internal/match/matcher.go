// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package match scores free-text queries against catalog keys.
//
// Scores are 0-100, computed as the greatest of a whole-string Levenshtein
// ratio, a token-set ratio that tolerates word reordering and missing
// words, and a discounted substring-window ratio for short queries against
// long titles. A ranked top-N with a minimum-score cutoff turns the scores
// into fuzzy candidates.
package match

import (
	"sort"
	"strings"
)

// Default ranking parameters.
const (
	// DefaultMinScore is the similarity cutoff below which a key is not
	// considered a candidate.
	DefaultMinScore = 60

	// DefaultLimit caps how many candidates a match returns.
	DefaultLimit = 3
)

// Candidate is one scored catalog key.
type Candidate struct {
	Key   string
	Score int
}

// Matcher ranks catalog keys against a query.
type Matcher struct {
	minScore int
	limit    int
}

// New creates a Matcher. Out-of-range arguments fall back to the defaults
// (minScore 60, limit 3).
func New(minScore, limit int) *Matcher {
	if minScore <= 0 || minScore > 100 {
		minScore = DefaultMinScore
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Matcher{minScore: minScore, limit: limit}
}

// Match scores query against every key, sorts descending by score and
// returns at most the configured limit of candidates at or above the
// minimum score. The sort is stable, so ties keep the input key order.
// An empty key set yields an empty result.
func (m *Matcher) Match(query string, keys []string) []Candidate {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" || len(keys) == 0 {
		return nil
	}

	scored := make([]Candidate, 0, len(keys))
	for _, key := range keys {
		scored = append(scored, Candidate{Key: key, Score: Score(query, key)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	var out []Candidate
	for _, c := range scored {
		if c.Score < m.minScore {
			break
		}
		out = append(out, c)
		if len(out) == m.limit {
			break
		}
	}
	return out
}

// Score returns the 0-100 similarity of two strings: the greatest of the
// whole-string ratio, the token-set ratio and the discounted partial
// ratio. Comparison is case-insensitive.
func Score(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	r := ratio(a, b)
	if ts := tokenSetRatio(a, b); ts > r {
		r = ts
	}
	if pr := partialRatio(a, b); pr > r {
		r = pr
	}
	return r
}

// partialRatio scores the shorter string against every same-length window
// of the longer, discounted to at most 90 so a substring hit never beats a
// whole-string match. This keeps a short query scoring high against a long
// title it abbreviates ("matrx" vs "matrix reloaded").
func partialRatio(a, b string) int {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 || len(short) == len(long) {
		return 0
	}

	best := 0
	for i := 0; i+len(short) <= len(long); i++ {
		if r := ratio(short, long[i:i+len(short)]); r > best {
			best = r
		}
	}
	return best * 9 / 10
}

// ratio is a normalized Levenshtein similarity: 100 for equal strings,
// scaled down by edit distance over the longer length.
func ratio(a, b string) int {
	if a == b {
		return 100
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein(a, b)
	return (longest - d) * 100 / longest
}

// tokenSetRatio compares the strings as word sets: the shared tokens, then
// shared-plus-remainder for each side, taking the best pairwise ratio. This
// scores "matrix reloaded" high against "reloaded matrix" or "matrix".
func tokenSetRatio(a, b string) int {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var shared, restA, restB []string
	for _, t := range ta {
		if contains(tb, t) {
			shared = append(shared, t)
		} else {
			restA = append(restA, t)
		}
	}
	for _, t := range tb {
		if !contains(ta, t) {
			restB = append(restB, t)
		}
	}

	s0 := strings.Join(shared, " ")
	s1 := strings.Join(append(append([]string{}, shared...), restA...), " ")
	s2 := strings.Join(append(append([]string{}, shared...), restB...), " ")

	best := ratio(s1, s2)
	if s0 != "" {
		if r := ratio(s0, s1); r > best {
			best = r
		}
		if r := ratio(s0, s2); r > best {
			best = r
		}
	}
	return best
}

// tokenSet splits into sorted unique whitespace-delimited tokens.
func tokenSet(s string) []string {
	fields := strings.Fields(s)
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func contains(set []string, tok string) bool {
	for _, t := range set {
		if t == tok {
			return true
		}
	}
	return false
}

// levenshtein calculates the edit distance between two strings using two
// rows instead of the full matrix.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
