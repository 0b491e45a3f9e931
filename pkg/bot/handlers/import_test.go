package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/smith3v/lexilogio/pkg/drill"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestHandleDocumentRejectsUnknownType(t *testing.T) {
	h, _ := newTestHandlers(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleDocument(context.Background(), b, newTestDocumentUpdate("deck.pdf", "file-1", 600))

	if got := client.lastMessageText(t); !strings.HasPrefix(got, "Unsupported file type") {
		t.Fatalf("unexpected reply %q", got)
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected no file download, got %d requests", len(client.requests))
	}
}

func TestHandleDocumentImportsText(t *testing.T) {
	originalTransport := http.DefaultTransport
	t.Cleanup(func() {
		http.DefaultTransport = originalTransport
	})
	http.DefaultTransport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := "# category=nouns\nνερό: water\nψωμί: bread\nno colon here\n"
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})

	h, repo := newTestHandlers(t)
	client := newMockClient()
	client.response = `{"ok":true,"result":{"file_path":"files/deck.txt"}}`
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(context.Background(), b, newTestDocumentUpdate("deck.txt", "file-2", 601))

	if got := client.lastMessageText(t); got != "Imported 2 new cards, updated 0 cards, skipped 1 rows." {
		t.Fatalf("unexpected summary %q", got)
	}
	category, err := repo.CategoryByName(context.Background(), "nouns")
	if err != nil {
		t.Fatalf("expected the category to be created: %v", err)
	}
	counts, err := repo.BinCounts(context.Background(), drill.ByCategory(category.ID), false)
	if err != nil {
		t.Fatalf("BinCounts returned error: %v", err)
	}
	if counts[0] != 2 {
		t.Fatalf("expected two new terms in bin 0, got %v", counts)
	}
}

func TestHandleDocumentImportsCSVWithFetcher(t *testing.T) {
	var fetched string
	fetch := func(_ context.Context, url string) ([]byte, error) {
		fetched = url
		return []byte("question,answer\nνερό,water\nτρέχω,run\n"), nil
	}
	h, _ := newTestHandlers(t, WithFetcher(fetch))
	client := newMockClient()
	client.response = `{"ok":true,"result":{"file_path":"files/deck.csv"}}`
	b := newTestTelegramBot(t, client)

	h.HandleDocument(context.Background(), b, newTestDocumentUpdate("deck.csv", "file-3", 602))

	if !strings.HasSuffix(fetched, "files/deck.csv") {
		t.Fatalf("unexpected download link %q", fetched)
	}
	if got := client.lastMessageText(t); !strings.HasPrefix(got, "Imported 2 new cards") {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestHandleDocumentWithoutCards(t *testing.T) {
	fetch := func(context.Context, string) ([]byte, error) {
		return []byte("# just a comment\n"), nil
	}
	h, _ := newTestHandlers(t, WithFetcher(fetch))
	client := newMockClient()
	client.response = `{"ok":true,"result":{"file_path":"files/deck.txt"}}`
	b := newTestTelegramBot(t, client)

	h.HandleDocument(context.Background(), b, newTestDocumentUpdate("deck.txt", "file-4", 603))

	if got := client.lastMessageText(t); got != "No valid cards found to import." {
		t.Fatalf("unexpected reply %q", got)
	}
}

func TestHandleDocumentRejectsOversizedDownload(t *testing.T) {
	originalTransport := http.DefaultTransport
	t.Cleanup(func() {
		http.DefaultTransport = originalTransport
	})
	http.DefaultTransport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		body := strings.Repeat("νερό: water\n", maxImportSize/10)
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})

	h, repo := newTestHandlers(t)
	client := newMockClient()
	client.response = `{"ok":true,"result":{"file_path":"files/deck.txt"}}`
	b := newTestTelegramBot(t, client)

	h.HandleDocument(context.Background(), b, newTestDocumentUpdate("deck.txt", "file-5", 604))

	if got := client.lastMessageText(t); got != "The file is too large." {
		t.Fatalf("unexpected reply %q", got)
	}
	count, err := repo.CountTerms(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("expected nothing imported, got %d terms, %v", count, err)
	}
}

func TestHTTPFetchLimitsBody(t *testing.T) {
	originalTransport := http.DefaultTransport
	t.Cleanup(func() {
		http.DefaultTransport = originalTransport
	})
	size := maxImportSize
	http.DefaultTransport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(strings.Repeat("a", size))),
			Header:     make(http.Header),
		}, nil
	})

	data, err := httpFetch(context.Background(), "https://example.com/file")
	if err != nil || len(data) != maxImportSize {
		t.Fatalf("expected a body at the limit to pass, got %d bytes, %v", len(data), err)
	}

	size = maxImportSize + 1
	if _, err := httpFetch(context.Background(), "https://example.com/file"); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
}
