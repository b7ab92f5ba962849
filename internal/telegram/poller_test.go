// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package telegram

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryDelay(t *testing.T) {
	backoff := 2 * time.Second

	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"transport error keeps backoff", errors.New("connection refused"), backoff},
		{"server error keeps backoff", &APIError{Code: 502, Description: "Bad Gateway"}, backoff},
		{"rate limit honors retry_after", &APIError{Code: 429, RetryAfter: 7 * time.Second}, 7 * time.Second},
		{"rate limit without retry_after keeps backoff", &APIError{Code: 429}, backoff},
		{"bad token polls at the cap", &APIError{Code: 401, Description: "Unauthorized"}, maxPollBackoff},
		{"forbidden polls at the cap", &APIError{Code: 403, Description: "Forbidden"}, maxPollBackoff},
		{"wrapped api error unwraps", fmt.Errorf("getUpdates: %w", &APIError{Code: 429, RetryAfter: 3 * time.Second}), 3 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryDelay(tt.err, backoff); got != tt.want {
				t.Errorf("retryDelay = %v, want %v", got, tt.want)
			}
		})
	}
}
