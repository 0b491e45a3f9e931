package importexport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/logger"
)

var (
	ErrUnsupportedFormat = errors.New("importexport: unsupported format")
	ErrMalformedCategory = errors.New("importexport: malformed category line")
	// ErrNotRepresentable marks terms the line text format cannot hold.
	ErrNotRepresentable = errors.New("importexport: term does not fit the text format")
)

// Card is one parsed question/answer pair before it becomes a term.
type Card struct {
	Question string
	Answer   string
	Category string
	Tags     []string
}

type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "markdown"
)

// FormatFromName picks a format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return FormatText, nil
	case ".csv", ".tsv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// Parse decodes data in the given format. skipped counts lines or rows that
// held no usable card.
func Parse(format Format, data []byte) (cards []Card, skipped int, err error) {
	switch format {
	case FormatText:
		return ParseText(data)
	case FormatCSV:
		return ParseCSV(data)
	case FormatXLSX:
		return ParseXLSX(data)
	case FormatMarkdown:
		return ParseMarkdown(data)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseFile decodes data using the format implied by name.
func ParseFile(name string, data []byte) ([]Card, int, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, 0, err
	}
	return Parse(format, data)
}

// Terms turns cards into unsaved terms referencing categories and tags by name.
func Terms(cards []Card) []*db.Term {
	terms := make([]*db.Term, 0, len(cards))
	for _, card := range cards {
		term := &db.Term{Question: card.Question, Answer: card.Answer}
		if card.Category != "" {
			term.Category = &db.Category{Name: card.Category}
		}
		for _, name := range card.Tags {
			term.Tags = append(term.Tags, &db.Tag{Name: name})
		}
		terms = append(terms, term)
	}
	return terms
}

// Store is the part of the repository an import writes to.
type Store interface {
	UpsertTerms(ctx context.Context, terms []*db.Term) (inserted, updated int, err error)
}

type Summary struct {
	Inserted int
	Updated  int
	Skipped  int
}

func (s Summary) String() string {
	return fmt.Sprintf("Imported %d new cards, updated %d cards, skipped %d rows.", s.Inserted, s.Updated, s.Skipped)
}

// Import upserts cards by question. Missing categories and tags are created.
func Import(ctx context.Context, store Store, cards []Card) (Summary, error) {
	var summary Summary
	if len(cards) == 0 {
		return summary, nil
	}
	inserted, updated, err := store.UpsertTerms(ctx, Terms(cards))
	if err != nil {
		return summary, fmt.Errorf("failed to import cards: %w", err)
	}
	summary.Inserted = inserted
	summary.Updated = updated
	logger.Info("imported cards", "inserted", inserted, "updated", updated)
	return summary, nil
}

// ExportFilename names an export file for the given day.
func ExportFilename(now time.Time, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = "txt"
	}
	return fmt.Sprintf("lexilogio-%s.%s", now.Format("20060102"), ext)
}

func splitTags(value string) []string {
	var tags []string
	for _, field := range strings.FieldsFunc(value, func(r rune) bool { return r == ' ' || r == ',' }) {
		if field = strings.TrimSpace(field); field != "" {
			tags = append(tags, field)
		}
	}
	return tags
}

func termCategory(term *db.Term) string {
	if term.Category == nil {
		return ""
	}
	return term.Category.Name
}

func termTags(term *db.Term) string {
	names := make([]string, 0, len(term.Tags))
	for _, tag := range term.Tags {
		if tag != nil {
			names = append(names, tag.Name)
		}
	}
	return strings.Join(names, " ")
}

// BuildExport encodes terms in format. Markdown is import-only.
func BuildExport(format Format, terms []*db.Term) ([]byte, error) {
	switch format {
	case FormatText:
		return BuildExportText(terms)
	case FormatCSV:
		return BuildExportCSV(terms)
	case FormatXLSX:
		return BuildExportXLSX(terms)
	default:
		return nil, fmt.Errorf("%w: cannot export %q", ErrUnsupportedFormat, format)
	}
}

// ExportFormatFor picks the export format for a path, defaulting to text.
func ExportFormatFor(path string) (Format, error) {
	if filepath.Ext(path) == "" {
		return FormatText, nil
	}
	return FormatFromName(path)
}

// IsRemoteSource reports whether source names a git repository rather than a
// local file.
func IsRemoteSource(source string) bool {
	for _, prefix := range []string{"https://", "http://", "git@", "ssh://", "git://"} {
		if strings.HasPrefix(source, prefix) {
			return true
		}
	}
	return strings.HasSuffix(source, ".git")
}
