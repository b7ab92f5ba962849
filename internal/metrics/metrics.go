// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package metrics provides Prometheus instrumentation for Reelbot:
// query resolution outcomes and latency, fuzzy candidate counts, artifact
// deliveries, Telegram API calls and the circuit breaker, pending dialogs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolution engine metrics

	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelbot_queries_total",
			Help: "Total resolved inbound texts by outcome",
		},
		[]string{"outcome"}, // exact_hit, not_found, confirm_prompt, select_prompt, confirmed, reprompt, range_error, ingest_saved, ingest_reprompt
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelbot_resolve_duration_seconds",
			Help:    "Duration of one resolution engine pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	FuzzyCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reelbot_fuzzy_candidates",
			Help:    "Candidate count produced per fuzzy match",
			Buckets: []float64{0, 1, 2, 3},
		},
	)

	ActiveDialogs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelbot_active_dialogs",
			Help: "Pending disambiguation and ingest dialogs",
		},
	)

	// Delivery metrics

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelbot_deliveries_total",
			Help: "Artifact delivery attempts by kind and status",
		},
		[]string{"kind", "status"}, // kind: transfer, link; status: ok, error
	)

	// Telegram API metrics

	TelegramRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelbot_telegram_requests_total",
			Help: "Telegram Bot API requests by method and status",
		},
		[]string{"method", "status"}, // status: ok, api_error, transport_error, breaker_open
	)

	TelegramRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelbot_telegram_request_duration_seconds",
			Help:    "Telegram Bot API request duration",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelbot_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelbot_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Update ingress metrics

	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelbot_updates_total",
			Help: "Telegram updates received by payload type",
		},
		[]string{"type"}, // command, text, file, other
	)
)
