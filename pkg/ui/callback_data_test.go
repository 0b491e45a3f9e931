package ui

import (
	"strings"
	"testing"
)

const testToken = "6f1c2b8e-3d4a-4c5b-9e8f-0a1b2c3d4e5f"

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Action
		wantErr bool
	}{
		{
			name:  "home",
			input: "p:home",
			want:  Action{Screen: ScreenHome, Op: OpNone},
		},
		{
			name:  "count",
			input: "p:count",
			want:  Action{Screen: ScreenCount, Op: OpNone},
		},
		{
			name:  "close",
			input: "p:close",
			want:  Action{Screen: ScreenClose, Op: OpNone},
		},
		{
			name:  "count inc",
			input: "p:count:+",
			want:  Action{Screen: ScreenCount, Op: OpInc, Value: CountStep},
		},
		{
			name:  "count dec",
			input: "p:count:-",
			want:  Action{Screen: ScreenCount, Op: OpDec, Value: -CountStep},
		},
		{
			name:  "count set",
			input: "p:count:set:25",
			want:  Action{Screen: ScreenCount, Op: OpSet, Value: 25},
		},
		{
			name:  "spaced toggle",
			input: "p:spaced:toggle",
			want:  Action{Screen: ScreenSpaced, Op: OpToggle},
		},
		{
			name:  "rounding toggle",
			input: "p:rounding:toggle",
			want:  Action{Screen: ScreenRounding, Op: OpToggle},
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "missing prefix",
			input:   "home",
			wantErr: true,
		},
		{
			name:    "drill prefix",
			input:   "d:home",
			wantErr: true,
		},
		{
			name:    "unknown screen",
			input:   "p:noop",
			wantErr: true,
		},
		{
			name:    "home with op",
			input:   "p:home:+",
			wantErr: true,
		},
		{
			name:    "toggle on count",
			input:   "p:count:toggle",
			wantErr: true,
		},
		{
			name:    "count set zero",
			input:   "p:count:set:0",
			wantErr: true,
		},
		{
			name:    "count set negative",
			input:   "p:count:set:-1",
			wantErr: true,
		},
		{
			name:    "set on toggle screen",
			input:   "p:spaced:set:1",
			wantErr: true,
		},
		{
			name:    "extra parts",
			input:   "p:count:set:1:2",
			wantErr: true,
		},
		{
			name:    "too long",
			input:   "p:" + strings.Repeat("a", MaxCallbackDataLen),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCallbackData(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected action: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPreferenceBuildersRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		build func() (string, error)
		want  Action
	}{
		{"home", BuildHomeCallback, Action{Screen: ScreenHome}},
		{"count", BuildCountCallback, Action{Screen: ScreenCount}},
		{"close", BuildCloseCallback, Action{Screen: ScreenClose}},
		{"inc", BuildCountIncCallback, Action{Screen: ScreenCount, Op: OpInc, Value: CountStep}},
		{"dec", BuildCountDecCallback, Action{Screen: ScreenCount, Op: OpDec, Value: -CountStep}},
		{"set", func() (string, error) { return BuildCountSetCallback(15) }, Action{Screen: ScreenCount, Op: OpSet, Value: 15}},
		{"reversed", func() (string, error) { return BuildToggleCallback(ScreenReversed) }, Action{Screen: ScreenReversed, Op: OpToggle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, err := ParseCallbackData(data)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("unexpected action: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPreferenceBuildersRejectInvalidInput(t *testing.T) {
	if _, err := BuildCountSetCallback(0); err == nil {
		t.Fatalf("expected error for zero count")
	}
	if _, err := BuildToggleCallback(ScreenCount); err == nil {
		t.Fatalf("expected error for toggling count")
	}
}

func TestDrillCallbacksRoundTrip(t *testing.T) {
	show, err := BuildShowCallback(testToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, err := ParseDrillCallback(show); err != nil || got != (DrillAction{Op: DrillShow, Token: testToken}) {
		t.Fatalf("show round trip = %+v, %v", got, err)
	}

	stop, _ := BuildStopCallback(testToken)
	if got, err := ParseDrillCallback(stop); err != nil || got.Op != DrillStop {
		t.Fatalf("stop round trip = %+v, %v", got, err)
	}

	for grade := 1; grade <= 5; grade++ {
		data, err := BuildGradeCallback(testToken, grade)
		if err != nil {
			t.Fatalf("BuildGradeCallback(%d) returned error: %v", grade, err)
		}
		if len(data) > MaxCallbackDataLen {
			t.Fatalf("callback data too long: %d", len(data))
		}
		if !IsDrillCallback(data) {
			t.Fatalf("expected %q to be a drill callback", data)
		}
		got, err := ParseDrillCallback(data)
		if err != nil || got != (DrillAction{Op: DrillGrade, Token: testToken, Grade: grade}) {
			t.Fatalf("grade round trip = %+v, %v", got, err)
		}
	}
}

func TestParseDrillCallbackRejectsInvalidData(t *testing.T) {
	for _, input := range []string{
		"",
		"p:home",
		"d:show",
		"d:show:not-a-token",
		"d:grade:" + testToken,
		"d:grade:" + testToken + ":0",
		"d:grade:" + testToken + ":6",
		"d:grade:" + testToken + ":x",
		"d:show:" + testToken + ":1",
		"d:skip:" + testToken,
	} {
		if _, err := ParseDrillCallback(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
	if _, err := BuildGradeCallback(testToken, 6); err == nil {
		t.Fatalf("expected error for grade 6")
	}
	if _, err := BuildShowCallback("nope"); err == nil {
		t.Fatalf("expected error for invalid token")
	}
}
