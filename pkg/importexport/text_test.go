package importexport

import (
	"errors"
	"strings"
	"testing"

	"github.com/smith3v/lexilogio/pkg/db"
)

func TestParseText(t *testing.T) {
	data := strings.Join([]string{
		"# greek basics",
		"καλημέρα: good morning",
		"",
		"# category=animals",
		"ο σκύλος : dog",
		"no colon here",
		"too: many: colons",
		"#category = food",
		"το ψωμί: bread",
		"empty:",
	}, "\n")

	cards, skipped, err := ParseText([]byte(data))
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	want := []Card{
		{Question: "καλημέρα", Answer: "good morning"},
		{Question: "ο σκύλος", Answer: "dog", Category: "animals"},
		{Question: "too", Answer: "many: colons", Category: "animals"},
		{Question: "το ψωμί", Answer: "bread", Category: "food"},
	}
	if len(cards) != len(want) {
		t.Fatalf("expected %d cards, got %d: %+v", len(want), len(cards), cards)
	}
	for i := range want {
		if cards[i].Question != want[i].Question || cards[i].Answer != want[i].Answer || cards[i].Category != want[i].Category {
			t.Fatalf("card %d = %+v, want %+v", i, cards[i], want[i])
		}
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped lines, got %d", skipped)
	}
}

func TestParseTextRejectsMalformedCategory(t *testing.T) {
	_, _, err := ParseText([]byte("# category\nq: a\n"))
	if !errors.Is(err, ErrMalformedCategory) {
		t.Fatalf("expected ErrMalformedCategory, got %v", err)
	}
}

func TestParseTextEmptyCategoryResets(t *testing.T) {
	cards, _, err := ParseText([]byte("# category=verbs\na: 1\n# category=\nb: 2\n"))
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	if len(cards) != 2 || cards[0].Category != "verbs" || cards[1].Category != "" {
		t.Fatalf("unexpected cards: %+v", cards)
	}
}

func TestWriteTextGroupsAndSorts(t *testing.T) {
	food := &db.Category{ID: 2, Name: "food"}
	animals := &db.Category{ID: 1, Name: "animals"}
	terms := []*db.Term{
		{ID: 1, Question: "ψωμί", Answer: "bread", Category: food},
		{ID: 2, Question: "γάτα", Answer: "cat", Category: animals},
		{ID: 3, Question: "ναι", Answer: "yes"},
		{ID: 4, Question: "άλογο", Answer: "horse", Category: animals},
		{ID: 5, Question: "γάλα", Answer: "milk", Category: food},
	}

	out, err := BuildExportText(terms)
	if err != nil {
		t.Fatalf("BuildExportText returned error: %v", err)
	}
	want := strings.Join([]string{
		"ναι: yes",
		"# category=animals",
		"άλογο: horse",
		"γάτα: cat",
		"# category=food",
		"γάλα: milk",
		"ψωμί: bread",
		"",
	}, "\n")
	if string(out) != want {
		t.Fatalf("unexpected export:\n%s\nwant:\n%s", out, want)
	}

	cards, skipped, err := ParseText(out)
	if err != nil || skipped != 0 || len(cards) != len(terms) {
		t.Fatalf("re-import produced %d cards, %d skipped, %v", len(cards), skipped, err)
	}
}

func TestTextRoundTripKeepsColonsInAnswers(t *testing.T) {
	terms := []*db.Term{
		{ID: 1, Question: "ratio", Answer: "1:2"},
		{ID: 2, Question: "dog", Answer: "σκύλος"},
		{ID: 3, Question: "time", Answer: "12:30:00", Category: &db.Category{ID: 1, Name: "clock"}},
	}

	out, err := BuildExportText(terms)
	if err != nil {
		t.Fatalf("BuildExportText returned error: %v", err)
	}
	cards, skipped, err := ParseText(out)
	if err != nil {
		t.Fatalf("ParseText returned error: %v", err)
	}
	if skipped != 0 || len(cards) != len(terms) {
		t.Fatalf("re-import produced %d cards, %d skipped from:\n%s", len(cards), skipped, out)
	}
	answers := make(map[string]string)
	for _, card := range cards {
		answers[card.Question] = card.Answer
	}
	for _, term := range terms {
		if answers[term.Question] != term.Answer {
			t.Fatalf("%q: got answer %q, want %q", term.Question, answers[term.Question], term.Answer)
		}
	}
}

func TestWriteTextRejectsUnrepresentableTerms(t *testing.T) {
	tests := []struct {
		name string
		term *db.Term
	}{
		{"colon in question", &db.Term{Question: "a:b", Answer: "c"}},
		{"hash question", &db.Term{Question: "# note", Answer: "c"}},
		{"line break in answer", &db.Term{Question: "q", Answer: "one\ntwo"}},
		{"equals in category", &db.Term{Question: "q", Answer: "a", Category: &db.Category{Name: "x=y"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildExportText([]*db.Term{tt.term}); !errors.Is(err, ErrNotRepresentable) {
				t.Fatalf("expected ErrNotRepresentable, got %v", err)
			}
		})
	}
}
