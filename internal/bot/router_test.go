// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/reelbot/reelbot/internal/catalog"
	"github.com/reelbot/reelbot/internal/delivery"
	"github.com/reelbot/reelbot/internal/match"
	"github.com/reelbot/reelbot/internal/resolve"
	"github.com/reelbot/reelbot/internal/session"
	"github.com/reelbot/reelbot/internal/telegram"
)

const (
	adminID = int64(1)
	userID  = int64(2)
)

// fakeTransport records replies and binary sends.
type fakeTransport struct {
	texts    []string
	binaries []string
	links    [][]delivery.LabeledLink
}

func (f *fakeTransport) SendText(_ context.Context, _ int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeTransport) SendLinks(_ context.Context, _ int64, text string, links []delivery.LabeledLink) error {
	f.texts = append(f.texts, text)
	f.links = append(f.links, links)
	return nil
}

func (f *fakeTransport) SendBinary(_ context.Context, _ int64, handle, _ string) error {
	f.binaries = append(f.binaries, handle)
	return nil
}

func (f *fakeTransport) lastText(t *testing.T) string {
	t.Helper()
	if len(f.texts) == 0 {
		t.Fatal("no reply sent")
	}
	return f.texts[len(f.texts)-1]
}

type fixture struct {
	router    *Router
	transport *fakeTransport
	store     *catalog.MemoryStore
	sessions  *session.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := catalog.NewMemoryStore()
	sessions := session.NewStore(time.Minute)
	engine := resolve.NewEngine(store, store, match.New(60, 3), sessions)
	transport := &fakeTransport{}
	dispatcher := delivery.NewDispatcher(transport)

	return &fixture{
		router:    NewRouter(engine, dispatcher, transport, store, store, sessions, []int64{adminID}),
		transport: transport,
		store:     store,
		sessions:  sessions,
	}
}

func textUpdate(from int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From: &telegram.User{ID: from, Username: "someone"},
			Chat: telegram.Chat{ID: from},
			Text: text,
		},
	}
}

func fileUpdate(from int64, fileID, caption string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			From:     &telegram.User{ID: from},
			Chat:     telegram.Chat{ID: from},
			Caption:  caption,
			Document: &telegram.Attachment{FileID: fileID},
		},
	}
}

func (fx *fixture) handle(u telegram.Update) {
	fx.router.HandleUpdate(context.Background(), u)
}

func TestHandleUpdate_IgnoresEmptyUpdates(t *testing.T) {
	fx := newFixture(t)

	fx.handle(telegram.Update{UpdateID: 1})
	fx.handle(telegram.Update{UpdateID: 2, Message: &telegram.Message{Chat: telegram.Chat{ID: 5}}})

	if len(fx.transport.texts) != 0 {
		t.Errorf("replies sent for empty updates: %v", fx.transport.texts)
	}
}

func TestHandleUpdate_QueryDelivers(t *testing.T) {
	fx := newFixture(t)
	mustPut(t, fx.store, "inception", "720p", "file-1")

	fx.handle(textUpdate(userID, "inception"))

	if len(fx.transport.binaries) != 1 || fx.transport.binaries[0] != "file-1" {
		t.Errorf("binaries = %v", fx.transport.binaries)
	}
}

func TestHandleUpdate_DisambiguationOverTelegram(t *testing.T) {
	fx := newFixture(t)
	mustPut(t, fx.store, "inception", "720p", "https://x/1")

	fx.handle(textUpdate(userID, "incepton"))
	if !strings.Contains(fx.transport.lastText(t), "Did you mean") {
		t.Fatalf("prompt = %q", fx.transport.lastText(t))
	}

	fx.handle(textUpdate(userID, "yes"))
	if len(fx.transport.links) != 1 {
		t.Errorf("links = %v", fx.transport.links)
	}
}

func TestCommand_StartAndHelp(t *testing.T) {
	fx := newFixture(t)

	for _, cmd := range []string{"/start", "/help", "/start@reelbot"} {
		fx.handle(textUpdate(userID, cmd))
		if !strings.Contains(fx.transport.lastText(t), "movie name") {
			t.Errorf("%s reply = %q", cmd, fx.transport.lastText(t))
		}
	}
}

func TestCommand_Unknown(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(userID, "/frobnicate"))
	if !strings.Contains(fx.transport.lastText(t), "Unknown command") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}
}

func TestCommand_AddMovie(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(adminID, "/addmovie Inception 720p https://x/1"))
	if !strings.Contains(fx.transport.lastText(t), "Added Inception - 720p") {
		t.Fatalf("reply = %q", fx.transport.lastText(t))
	}

	entry, err := fx.store.Get(context.Background(), "inception")
	if err != nil {
		t.Fatalf("entry not stored: %v", err)
	}
	artifact, ok := entry.Quality("720p")
	if !ok || artifact.Kind != catalog.KindLink {
		t.Errorf("artifact = %+v, %v", artifact, ok)
	}
}

func TestCommand_AddMovieRefusedForNonAdmin(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(userID, "/addmovie inception 720p https://x/1"))
	if !strings.Contains(fx.transport.lastText(t), "not allowed") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}
	if _, err := fx.store.Get(context.Background(), "inception"); err == nil {
		t.Error("entry stored despite refused command")
	}
}

func TestCommand_AddMovieUsageOnBadArgs(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(adminID, "/addmovie inception"))
	if !strings.Contains(fx.transport.lastText(t), "Usage:") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}
}

func TestCommand_RequestAndShowRequests(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(userID, "/request The Lost City"))
	if !strings.Contains(fx.transport.lastText(t), "The Lost City") {
		t.Fatalf("reply = %q", fx.transport.lastText(t))
	}

	fx.handle(textUpdate(adminID, "/showrequests"))
	got := fx.transport.lastText(t)
	if !strings.Contains(got, "someone -> The Lost City") {
		t.Errorf("listing = %q", got)
	}
}

func TestCommand_ShowRequestsEmptyAndRefused(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(adminID, "/showrequests"))
	if !strings.Contains(fx.transport.lastText(t), "No movie requests") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}

	fx.handle(textUpdate(userID, "/showrequests"))
	if !strings.Contains(fx.transport.lastText(t), "admin") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}
}

func TestCommand_RequestUsage(t *testing.T) {
	fx := newFixture(t)

	fx.handle(textUpdate(userID, "/request"))
	if !strings.Contains(fx.transport.lastText(t), "Usage:") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}
}

func TestFile_CaptionedUploadCommitsDirectly(t *testing.T) {
	fx := newFixture(t)

	fx.handle(fileUpdate(adminID, "file-abc", "Inception | 720p"))
	if !strings.Contains(fx.transport.lastText(t), "Saved Inception - 720p") {
		t.Fatalf("reply = %q", fx.transport.lastText(t))
	}

	entry, err := fx.store.Get(context.Background(), "inception")
	if err != nil {
		t.Fatalf("entry not stored: %v", err)
	}
	artifact, _ := entry.Quality("720p")
	if artifact.Kind != catalog.KindTransfer || artifact.Value != "file-abc" {
		t.Errorf("artifact = %+v", artifact)
	}

	if _, ok := fx.sessions.Ingest(adminID); ok {
		t.Error("captioned upload must not park an ingest session")
	}
}

func TestFile_UncaptionedUploadParksThenCommits(t *testing.T) {
	fx := newFixture(t)

	fx.handle(fileUpdate(adminID, "file-abc", ""))
	if !strings.Contains(fx.transport.lastText(t), "name|quality") {
		t.Fatalf("reply = %q", fx.transport.lastText(t))
	}
	if _, ok := fx.sessions.Ingest(adminID); !ok {
		t.Fatal("upload did not park an ingest session")
	}

	fx.handle(textUpdate(adminID, "inception|720p"))
	if !strings.Contains(fx.transport.lastText(t), "Saved Inception - 720p") {
		t.Fatalf("reply = %q", fx.transport.lastText(t))
	}
	if _, err := fx.store.Get(context.Background(), "inception"); err != nil {
		t.Errorf("entry not committed: %v", err)
	}
}

func TestFile_UploadRefusedForNonAdmin(t *testing.T) {
	fx := newFixture(t)

	fx.handle(fileUpdate(userID, "file-abc", "inception|720p"))
	if !strings.Contains(fx.transport.lastText(t), "admin") {
		t.Errorf("reply = %q", fx.transport.lastText(t))
	}
	if _, err := fx.store.Get(context.Background(), "inception"); err == nil {
		t.Error("non-admin upload was stored")
	}
}

func mustPut(t *testing.T, w catalog.Writer, name, quality, value string) {
	t.Helper()
	artifact, err := catalog.Classify(value)
	if err != nil {
		t.Fatalf("classify %q: %v", value, err)
	}
	if err := w.Put(context.Background(), name, quality, artifact); err != nil {
		t.Fatalf("put %q: %v", name, err)
	}
}
