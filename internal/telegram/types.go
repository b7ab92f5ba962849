// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package telegram

import (
	"strings"
	"time"
)

// Update is one item from getUpdates. Only message updates are consumed.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from,omitempty"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text,omitempty"`
	Caption   string      `json:"caption,omitempty"`
	Document  *Attachment `json:"document,omitempty"`
	Video     *Attachment `json:"video,omitempty"`
	Audio     *Attachment `json:"audio,omitempty"`
	Voice     *Attachment `json:"voice,omitempty"`
}

// Attachment carries the opaque file handle of any media payload kind.
type Attachment struct {
	FileID string `json:"file_id"`
}

// FileID returns the transfer handle of the first attachment on the
// message, if any.
func (m *Message) FileID() (string, bool) {
	for _, a := range []*Attachment{m.Document, m.Video, m.Audio, m.Voice} {
		if a != nil && a.FileID != "" {
			return a.FileID, true
		}
	}
	return "", false
}

// IsCommand reports whether the message text is a bot command.
func (m *Message) IsCommand() bool {
	return strings.HasPrefix(m.Text, "/")
}

// User identifies the sender.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Chat identifies the conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// InlineKeyboardButton is one actionable URL button.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// InlineKeyboardMarkup is a grid of inline buttons.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// sendMessageRequest is the sendMessage API payload.
type sendMessageRequest struct {
	ChatID                int64                 `json:"chat_id"`
	Text                  string                `json:"text"`
	DisableWebPagePreview bool                  `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// sendDocumentRequest is the sendDocument API payload; Document is an
// opaque file_id the API redeems server-side.
type sendDocumentRequest struct {
	ChatID   int64  `json:"chat_id"`
	Document string `json:"document"`
	Caption  string `json:"caption,omitempty"`
}

// getUpdatesRequest is the getUpdates long-poll payload.
type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// apiResponse is the Telegram Bot API envelope.
type apiResponse struct {
	OK          bool           `json:"ok"`
	Result      rawResult      `json:"result,omitempty"`
	ErrorCode   int            `json:"error_code,omitempty"`
	Description string         `json:"description,omitempty"`
	Parameters  *apiParameters `json:"parameters,omitempty"`
}

// rawResult defers result decoding to the caller.
type rawResult []byte

func (r *rawResult) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// apiParameters carries additional response parameters.
type apiParameters struct {
	RetryAfter int `json:"retry_after,omitempty"`
}

// APIError is a non-OK Telegram Bot API response.
type APIError struct {
	Code        int
	Description string
	RetryAfter  time.Duration
}

func (e *APIError) Error() string {
	return "telegram: " + e.Description
}

// Transient reports whether the error is worth retrying: rate limits and
// server-side failures.
func (e *APIError) Transient() bool {
	return e.Code == 429 || e.Code >= 500
}
