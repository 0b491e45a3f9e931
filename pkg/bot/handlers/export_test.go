package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/lexilogio/pkg/db"
)

func TestHandleExportRequiresPrivateChat(t *testing.T) {
	h, _ := newTestHandlers(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	update := newTestUpdate("/export", 500)
	update.Message.Chat.Type = models.ChatTypeGroup

	h.HandleExport(context.Background(), b, update)

	if got := client.lastMessageText(t); !strings.Contains(got, "only in private chat") {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestHandleExportEmptyDeck(t *testing.T) {
	h, _ := newTestHandlers(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	update := newTestUpdate("/export", 501)
	update.Message.Chat.Type = models.ChatTypePrivate

	h.HandleExport(context.Background(), b, update)

	if got := client.lastMessageText(t); got != "The deck is empty, there is nothing to export." {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestHandleExportSendsDocument(t *testing.T) {
	h, repo := newTestHandlers(t)
	seedTerms(t, repo,
		&db.Term{Question: "νερό", Answer: "water", Category: &db.Category{Name: "nouns"}},
		&db.Term{Question: "τρέχω", Answer: "run"},
	)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	update := newTestUpdate("/export", 502)
	update.Message.Chat.Type = models.ChatTypePrivate

	h.HandleExport(context.Background(), b, update)

	caption, _ := client.lastMultipartField(t, "caption")
	if caption != "Deck export (2 cards)." {
		t.Fatalf("unexpected caption %q", caption)
	}
	content, filename := client.lastMultipartField(t, "document")
	if !strings.HasPrefix(filename, "lexilogio-") || !strings.HasSuffix(filename, ".txt") {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !strings.Contains(content, "# category=nouns") || !strings.Contains(content, "νερό: water") {
		t.Fatalf("unexpected export content %q", content)
	}
}

func TestHandleExportFallsBackToCSV(t *testing.T) {
	h, repo := newTestHandlers(t)
	seedTerms(t, repo,
		&db.Term{Question: "a:b", Answer: "colon in the question"},
		&db.Term{Question: "ratio", Answer: "1:2"},
	)
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	update := newTestUpdate("/export", 504)
	update.Message.Chat.Type = models.ChatTypePrivate

	h.HandleExport(context.Background(), b, update)

	content, filename := client.lastMultipartField(t, "document")
	if !strings.HasSuffix(filename, ".csv") {
		t.Fatalf("expected a csv export, got %q", filename)
	}
	if !strings.Contains(content, "a:b,colon in the question") || !strings.Contains(content, "ratio,1:2") {
		t.Fatalf("unexpected export content %q", content)
	}
}

func TestHandleStats(t *testing.T) {
	h, repo := newTestHandlers(t)
	seedTerms(t, repo,
		&db.Term{Question: "νερό", Answer: "water"},
		&db.Term{Question: "τρέχω", Answer: "run", Bin: 2},
	)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleStats(context.Background(), b, newTestUpdate("/stats", 503))

	got := client.lastMessageText(t)
	if !strings.Contains(got, "Total terms: 2") || !strings.Contains(got, "forward:  0:1 1:0 2:1") {
		t.Fatalf("unexpected stats %q", got)
	}
}
