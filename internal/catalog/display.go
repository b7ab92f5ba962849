// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package catalog

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayTitle renders a normalized catalog key for user-facing messages
// ("matrix reloaded" -> "Matrix Reloaded"). A cases.Caser is stateful and
// not safe for concurrent use, so one is created per call.
func DisplayTitle(key string) string {
	return cases.Title(language.English).String(key)
}
