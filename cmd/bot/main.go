// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package main is the entry point for the Reelbot service.
//
// Reelbot is a Telegram bot that resolves free-text movie queries against a
// catalog of quality-tagged artifacts (Telegram file handles or external
// links), disambiguating imprecise queries through a short confirmation
// dialog before delivering files or links.
//
// Startup order:
//
//  1. Configuration: Koanf v2 layered load (defaults, YAML file, REELBOT_* env)
//  2. Logging: global zerolog logger
//  3. Catalog: BadgerDB store (or in-memory for development)
//  4. Engine: fuzzy matcher, session store, resolution engine
//  5. Transport: Bot API client, token verification via getMe
//  6. Supervision: suture tree running the poller, session janitor and
//     ops HTTP server until SIGINT/SIGTERM
//
// Minimal configuration:
//
//	export REELBOT_TELEGRAM_TOKEN=123456:your-bot-token
//	export REELBOT_TELEGRAM_ADMIN_IDS=1623981166
//	export REELBOT_CATALOG_PATH=/data/reelbot
//	./reelbot
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/reelbot/reelbot/internal/api"
	"github.com/reelbot/reelbot/internal/bot"
	"github.com/reelbot/reelbot/internal/catalog"
	"github.com/reelbot/reelbot/internal/config"
	"github.com/reelbot/reelbot/internal/delivery"
	"github.com/reelbot/reelbot/internal/logging"
	"github.com/reelbot/reelbot/internal/match"
	"github.com/reelbot/reelbot/internal/resolve"
	"github.com/reelbot/reelbot/internal/session"
	"github.com/reelbot/reelbot/internal/supervisor"
	"github.com/reelbot/reelbot/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("configuration failed")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("reelbot starting")

	// Catalog storage.
	var (
		store    catalog.Store
		writer   catalog.Writer
		requests catalog.RequestLog
		db       *badger.DB
	)
	if cfg.Catalog.InMemory {
		mem := catalog.NewMemoryStore()
		store, writer, requests = mem, mem, mem
		logging.Warn().Msg("catalog is in-memory; entries will not survive a restart")
	} else {
		opts := badger.DefaultOptions(cfg.Catalog.Path).WithLogger(nil)
		db, err = badger.Open(opts)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("catalog open failed")
		}
		defer db.Close()

		bs := catalog.NewBadgerStore(db)
		store, writer, requests = bs, bs, bs
	}

	// Resolution core.
	sessions := session.NewStore(cfg.Session.TTL)
	matcher := match.New(cfg.Match.MinScore, cfg.Match.MaxCandidates)
	engine := resolve.NewEngine(store, writer, matcher, sessions)

	// Transport.
	client, err := telegram.NewClient(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: cfg.Telegram.PollTimeout,
		SendRate:    cfg.Telegram.SendRate,
		SendBurst:   cfg.Telegram.SendBurst,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("telegram client setup failed")
	}

	verifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	me, err := client.GetMe(verifyCtx)
	cancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("telegram token verification failed")
	}
	logging.Info().Str("bot", me.Username).Int64("id", me.ID).Msg("telegram token verified")

	dispatcher := delivery.NewDispatcher(client)
	router := bot.NewRouter(engine, dispatcher, client, writer, requests, sessions, cfg.Telegram.AdminIDs)

	// Supervision tree.
	slogger := slog.New(logging.NewSlogHandler())
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())

	tree.AddTransportService(telegram.NewPoller(client, router, cfg.Telegram.PollTimeout))
	tree.AddTransportService(session.NewJanitor(sessions, cfg.Session.SweepInterval))
	tree.AddOpsService(api.NewServer(api.Config{
		Host:    cfg.Server.Host,
		Port:    cfg.Server.Port,
		Timeout: cfg.Server.Timeout,
	}, func(context.Context) bool {
		return db == nil || !db.IsClosed()
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("supervisor exited")
	}
	logging.Info().Msg("reelbot stopped")
}
