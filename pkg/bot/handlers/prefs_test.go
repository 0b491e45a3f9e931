package handlers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/ui"
)

func TestApplyAction(t *testing.T) {
	base := db.DefaultPreferences()

	tests := []struct {
		name        string
		action      ui.Action
		wantCount   int
		wantScreen  ui.Screen
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "increment count",
			action:      ui.Action{Screen: ui.ScreenCount, Op: ui.OpInc, Value: ui.CountStep},
			wantCount:   30,
			wantScreen:  ui.ScreenCount,
			wantChanged: true,
		},
		{
			name:       "set same count",
			action:     ui.Action{Screen: ui.ScreenCount, Op: ui.OpSet, Value: 25},
			wantCount:  25,
			wantScreen: ui.ScreenCount,
		},
		{
			name:       "below minimum",
			action:     ui.Action{Screen: ui.ScreenCount, Op: ui.OpDec, Value: -30},
			wantCount:  25,
			wantScreen: ui.ScreenCount,
			wantErr:    ErrBelowMin,
		},
		{
			name:       "above maximum",
			action:     ui.Action{Screen: ui.ScreenCount, Op: ui.OpSet, Value: 500},
			wantCount:  25,
			wantScreen: ui.ScreenCount,
			wantErr:    ErrAboveMax,
		},
		{
			name:       "open home",
			action:     ui.Action{Screen: ui.ScreenHome},
			wantCount:  25,
			wantScreen: ui.ScreenHome,
		},
		{
			name:       "toggle needs toggle op",
			action:     ui.Action{Screen: ui.ScreenSpaced, Op: ui.OpSet},
			wantCount:  25,
			wantScreen: ui.ScreenHome,
			wantErr:    ErrInvalidAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, screen, changed, err := ApplyAction(base, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got.QuestionCount != tt.wantCount || screen != tt.wantScreen || changed != tt.wantChanged {
				t.Fatalf("unexpected result count=%d screen=%s changed=%v", got.QuestionCount, screen, changed)
			}
		})
	}
}

func TestApplyActionToggles(t *testing.T) {
	base := db.DefaultPreferences()

	got, _, changed, err := ApplyAction(base, ui.Action{Screen: ui.ScreenReversed, Op: ui.OpToggle})
	if err != nil || !changed || !got.ReversedDrill {
		t.Fatalf("expected reversed drill to toggle on, got %+v err=%v", got, err)
	}
	got, _, _, _ = ApplyAction(base, ui.Action{Screen: ui.ScreenRounding, Op: ui.OpToggle})
	if got.RoundingMode != db.RoundingProportional {
		t.Fatalf("expected proportional rounding, got %q", got.RoundingMode)
	}
	got.BinWeights[0] = 9
	if base.BinWeights[0] == 9 {
		t.Fatalf("expected toggles to copy the bin weights")
	}
}

func TestHandlePrefsCallbackSavesToggle(t *testing.T) {
	h, repo := newTestHandlers(t)
	ctx := context.Background()
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	data, err := ui.BuildToggleCallback(ui.ScreenSpaced)
	if err != nil {
		t.Fatalf("BuildToggleCallback returned error: %v", err)
	}
	h.HandlePrefsCallback(ctx, b, newTestCallbackUpdate(data, 400, 400, 5))

	prefs, err := repo.Preferences(ctx)
	if err != nil {
		t.Fatalf("Preferences returned error: %v", err)
	}
	if prefs.SpacedRepetition {
		t.Fatalf("expected spaced repetition to be switched off")
	}
	if got := client.lastTextFor(t, "editMessageText"); !strings.Contains(got, "Spaced repetition: off") {
		t.Fatalf("unexpected preferences text %q", got)
	}
}

func TestHandlePrefsCallbackRejectsLimit(t *testing.T) {
	h, repo := newTestHandlers(t)
	ctx := context.Background()
	prefs, _ := repo.Preferences(ctx)
	prefs.QuestionCount = MaxQuestionCount
	if err := repo.SavePreferences(ctx, &prefs); err != nil {
		t.Fatalf("SavePreferences returned error: %v", err)
	}
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	data, _ := ui.BuildCountIncCallback()
	h.HandlePrefsCallback(ctx, b, newTestCallbackUpdate(data, 401, 401, 5))

	if got := client.lastTextFor(t, "answerCallbackQuery"); got != "Maximum is 200" {
		t.Fatalf("unexpected callback answer %q", got)
	}
}

func TestHandlePrefsSendsScreen(t *testing.T) {
	h, _ := newTestHandlers(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandlePrefs(context.Background(), b, newTestUpdate("/prefs", 402))

	if got := client.lastMessageText(t); !strings.Contains(got, "Questions per drill: 25") {
		t.Fatalf("unexpected preferences text %q", got)
	}
}
