package importexport

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/smith3v/lexilogio/pkg/db"
)

const categoryDirective = "category"

// ParseText reads the line format: "question: answer" per line, with
// "# category=NAME" switching the category of the lines that follow. Other
// comment lines are ignored. The first colon separates question and answer, so
// answers may contain colons; lines without a colon are skipped.
func ParseText(data []byte) ([]Card, int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var cards []Card
	skipped := 0
	category := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			directive := strings.TrimSpace(strings.ReplaceAll(line, "#", ""))
			if !strings.HasPrefix(directive, categoryDirective) {
				continue
			}
			parts := strings.Split(directive, "=")
			if len(parts) != 2 {
				return nil, skipped, fmt.Errorf("%w: line %d: %q", ErrMalformedCategory, lineNo, line)
			}
			category = strings.TrimSpace(parts[1])
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			skipped++
			continue
		}
		question := strings.TrimSpace(parts[0])
		answer := strings.TrimSpace(parts[1])
		if question == "" || answer == "" {
			skipped++
			continue
		}
		cards = append(cards, Card{Question: question, Answer: answer, Category: category})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return cards, skipped, nil
}

// WriteText writes terms in the line format: uncategorized terms first, then
// one block per category ordered by name, each sorted by question.
func WriteText(w io.Writer, terms []*db.Term) error {
	if err := CheckText(terms); err != nil {
		return err
	}
	groups := make(map[string][]*db.Term)
	for _, term := range terms {
		name := termCategory(term)
		groups[name] = append(groups[name], term)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		if name != "" {
			if _, err := fmt.Fprintf(bw, "# %s=%s\n", categoryDirective, name); err != nil {
				return err
			}
		}
		group := groups[name]
		SortTermsForExport(group)
		for _, term := range group {
			if _, err := fmt.Fprintf(bw, "%s: %s\n", term.Question, term.Answer); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// CheckText reports the first term that would not survive a text round trip:
// a question holding a colon or starting with '#', a category holding '=', or
// a line break anywhere.
func CheckText(terms []*db.Term) error {
	for _, term := range terms {
		switch {
		case strings.Contains(term.Question, ":"),
			strings.HasPrefix(strings.TrimSpace(term.Question), "#"),
			strings.ContainsAny(term.Question, "\r\n"),
			strings.ContainsAny(term.Answer, "\r\n"),
			strings.ContainsAny(termCategory(term), "=\r\n"):
			return fmt.Errorf("%w: %q", ErrNotRepresentable, term.Question)
		}
	}
	return nil
}

func BuildExportText(terms []*db.Term) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteText(&buf, terms); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func SortTermsForExport(terms []*db.Term) {
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Question == terms[j].Question {
			return terms[i].ID < terms[j].ID
		}
		return terms[i].Question < terms[j].Question
	})
}
