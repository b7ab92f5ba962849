// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package telegram is the Bot API transport: an HTTP client with outbound
// rate limiting and a circuit breaker, plus the long-poll update source.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/reelbot/reelbot/internal/delivery"
	"github.com/reelbot/reelbot/internal/logging"
	"github.com/reelbot/reelbot/internal/metrics"
)

const (
	defaultBaseURL = "https://api.telegram.org"

	// maxResponseBytes bounds how much of an API response is read.
	maxResponseBytes = 1 << 20

	breakerName = "telegram-api"
)

// Config configures the Bot API client.
type Config struct {
	// Token is the bot token in "123456:alnum" format.
	Token string

	// BaseURL overrides the API origin, for tests.
	BaseURL string

	// PollTimeout is the getUpdates long-poll duration in seconds.
	PollTimeout int

	// SendRate is the sustained outbound message rate per second.
	SendRate float64

	// SendBurst is the outbound burst allowance.
	SendBurst int
}

// Client talks to the Telegram Bot API. Outbound sends pass a token-bucket
// limiter; every call passes a circuit breaker so a dead API fails fast
// instead of piling up requests.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[rawResult]
}

// ValidateToken checks the bot token shape (numbers:alphanumeric).
func ValidateToken(token string) error {
	parts := strings.Split(token, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid bot token format")
	}
	return nil
}

// NewClient creates a Bot API client.
func NewClient(cfg Config) (*Client, error) {
	if err := ValidateToken(cfg.Token); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30
	}
	if cfg.SendRate <= 0 {
		cfg.SendRate = 20 // Telegram's documented overall bot limit is ~30/s
	}
	if cfg.SendBurst <= 0 {
		cfg.SendBurst = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	// Opens at >=60% failures over at least 10 requests; half-open probes
	// after the timeout. Same shape the upstream API wrappers use.
	breaker := gobreaker.NewCircuitBreaker[rawResult](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("from", from.String()).Str("to", to.String()).Msg("telegram circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Client{
		token:   cfg.Token,
		baseURL: cfg.BaseURL,
		client: &http.Client{
			// Must outlive a full long-poll cycle.
			Timeout: time.Duration(cfg.PollTimeout+15) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRate), cfg.SendBurst),
		breaker: breaker,
	}, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}

// call posts one Bot API method through the breaker and decodes the
// envelope. A non-OK envelope becomes an *APIError.
func (c *Client) call(ctx context.Context, method string, payload any) (rawResult, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (rawResult, error) {
		return c.doCall(ctx, method, payload)
	})
	metrics.TelegramRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.TelegramRequestsTotal.WithLabelValues(method, "ok").Inc()
	case isAPIError(err):
		metrics.TelegramRequestsTotal.WithLabelValues(method, "api_error").Inc()
	case isBreakerOpen(err):
		metrics.TelegramRequestsTotal.WithLabelValues(method, "breaker_open").Inc()
	default:
		metrics.TelegramRequestsTotal.WithLabelValues(method, "transport_error").Inc()
	}
	return result, err
}

func isAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

func isBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func (c *Client) doCall(ctx context.Context, method string, payload any) (rawResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		apiErr := &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
		if envelope.Parameters != nil && envelope.Parameters.RetryAfter > 0 {
			apiErr.RetryAfter = time.Duration(envelope.Parameters.RetryAfter) * time.Second
		}
		return nil, apiErr
	}
	return envelope.Result, nil
}

// send is call with outbound rate limiting applied first.
func (c *Client) send(ctx context.Context, method string, payload any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	_, err := c.call(ctx, method, payload)
	return err
}

// GetMe verifies the token against the live API and returns the bot user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	result, err := c.call(ctx, "getMe", struct{}{})
	if err != nil {
		return nil, err
	}
	var me User
	if err := json.Unmarshal(result, &me); err != nil {
		return nil, fmt.Errorf("decode getMe result: %w", err)
	}
	return &me, nil
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	result, err := c.call(ctx, "getUpdates", getUpdatesRequest{
		Offset:         offset,
		Timeout:        timeoutSec,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// SendText implements delivery.Transport.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text})
}

// SendLinks implements delivery.Transport: one message with each labeled
// link as an inline URL button row.
func (c *Client) SendLinks(ctx context.Context, chatID int64, text string, links []delivery.LabeledLink) error {
	keyboard := make([][]InlineKeyboardButton, 0, len(links))
	for _, l := range links {
		keyboard = append(keyboard, []InlineKeyboardButton{{Text: l.Label, URL: l.URL}})
	}

	return c.send(ctx, "sendMessage", sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		DisableWebPagePreview: true,
		ReplyMarkup:           &InlineKeyboardMarkup{InlineKeyboard: keyboard},
	})
}

// SendBinary implements delivery.Transport: redeem a transfer handle as a
// captioned document.
func (c *Client) SendBinary(ctx context.Context, chatID int64, handle, caption string) error {
	return c.send(ctx, "sendDocument", sendDocumentRequest{
		ChatID:   chatID,
		Document: handle,
		Caption:  caption,
	})
}
