package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/smith3v/lexilogio/pkg/config"
)

func TestFileNameForDeck(t *testing.T) {
	tests := []struct {
		deck string
		want string
	}{
		{"el_en", "lexilogio_el_en.db"},
		{"greek  words", "lexilogio_greek_words.db"},
		{"  ", "lexilogio_" + config.DefaultDeck + ".db"},
	}
	for _, tt := range tests {
		if got := FileNameForDeck(tt.deck); got != tt.want {
			t.Fatalf("FileNameForDeck(%q) = %q, want %q", tt.deck, got, tt.want)
		}
	}
}

func TestOpenCreatesSqliteDeck(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Deck = "test deck"
	cfg.Logging.GormLevel = "silent"

	gdb, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := Close(gdb); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})

	if _, err := os.Stat(filepath.Join(cfg.DataDir, "lexilogio_test_deck.db")); err != nil {
		t.Fatalf("expected deck file to exist: %v", err)
	}
	for _, model := range Models() {
		if !gdb.Migrator().HasTable(model) {
			t.Fatalf("expected table for %T", model)
		}
	}
	if !gdb.Migrator().HasTable("term_tags") {
		t.Fatal("expected join table term_tags")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "oracle"
	if _, err := Open(cfg); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}

func TestPreferencesAccessors(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.GetQuestionCount() != DefaultQuestionCount {
		t.Fatalf("unexpected question count: %d", prefs.GetQuestionCount())
	}
	if !prefs.GetSpacedRepetition() || prefs.GetReversedDrill() {
		t.Fatalf("unexpected default flags: %+v", prefs)
	}
	weights := prefs.GetBinDistribution()
	if weights[0] != 0.35 || weights[5] != 0.07 {
		t.Fatalf("unexpected default weights: %v", weights)
	}

	prefs.BinWeights[0] = 9
	if DefaultBinWeights[0] != 0.35 {
		t.Fatal("DefaultPreferences must copy the default weights")
	}

	broken := Preferences{BinWeights: []float64{1, 2}}
	if got := broken.GetBinDistribution(); got[0] != DefaultBinWeights[0] {
		t.Fatalf("expected fallback to default weights, got %v", got)
	}
	if broken.GetQuestionCount() != DefaultQuestionCount {
		t.Fatalf("expected fallback question count, got %d", broken.GetQuestionCount())
	}
}

func TestTermHasTag(t *testing.T) {
	term := Term{Tags: []*Tag{{ID: 3, Name: "verbs"}, nil}}
	if !term.HasTag(3) || term.HasTag(4) {
		t.Fatalf("unexpected HasTag results for %+v", term.Tags)
	}
}
