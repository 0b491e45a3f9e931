package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/importexport"
	"github.com/smith3v/lexilogio/pkg/logger"
)

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (r *Runner) preferencesMenu(ctx context.Context) error {
	for {
		prefs, err := r.store.Preferences(ctx)
		if err != nil {
			return err
		}
		r.printf("\nQuestions per drill: %d\n", prefs.GetQuestionCount())
		r.printf("Spaced repetition:   %s\n", onOff(prefs.GetSpacedRepetition()))
		r.printf("Reversed drill:      %s\n", onOff(prefs.GetReversedDrill()))
		r.printf("Bin weights:         %s\n", FormatWeights(prefs.GetBinDistribution()))
		r.printf("Rounding:            %s\n", prefs.RoundingMode)
		r.println("n) question count  s) spaced repetition  r) reversed  w) weights  m) rounding  b) back")
		choice, err := r.ask("> ")
		if err != nil {
			return err
		}

		switch strings.ToLower(choice) {
		case "n":
			value, err := r.ask("Questions per drill: ")
			if err != nil {
				return err
			}
			count, convErr := strconv.Atoi(value)
			if convErr != nil || count <= 0 {
				r.println("Please enter a positive number.")
				continue
			}
			prefs.QuestionCount = count
		case "s":
			prefs.SpacedRepetition = !prefs.SpacedRepetition
		case "r":
			prefs.ReversedDrill = !prefs.ReversedDrill
		case "w":
			value, err := r.ask("Six weights, bin 0 first: ")
			if err != nil {
				return err
			}
			weights, parseErr := ParseWeights(value)
			if parseErr != nil {
				r.printf("Error: %v\n", parseErr)
				continue
			}
			prefs.BinWeights = weights[:]
		case "m":
			if prefs.RoundingMode == db.RoundingProportional {
				prefs.RoundingMode = db.RoundingBinZero
			} else {
				prefs.RoundingMode = db.RoundingProportional
			}
		case "b", "":
			return nil
		default:
			r.printf("Unknown choice %q.\n", choice)
			continue
		}
		if prefs.RoundingMode == "" {
			prefs.RoundingMode = db.RoundingBinZero
		}
		if err := r.store.SavePreferences(ctx, &prefs); err != nil {
			return err
		}
	}
}

// ParseWeights reads six bin weights separated by commas or spaces.
func ParseWeights(value string) ([drill.BinCount]float64, error) {
	var weights [drill.BinCount]float64
	fields := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) != drill.BinCount {
		return weights, fmt.Errorf("expected %d weights, got %d", drill.BinCount, len(fields))
	}
	total := 0.0
	for i, field := range fields {
		w, err := strconv.ParseFloat(field, 64)
		if err != nil || w < 0 {
			return weights, fmt.Errorf("invalid weight %q", field)
		}
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return weights, fmt.Errorf("weights must not all be zero")
	}
	return weights, nil
}

func FormatWeights(weights [drill.BinCount]float64) string {
	parts := make([]string, len(weights))
	for i, w := range weights {
		parts[i] = strconv.FormatFloat(w, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (r *Runner) addCard(ctx context.Context) error {
	question, err := r.ask("Question: ")
	if err != nil {
		return err
	}
	if question == "" {
		return nil
	}
	answer, err := r.ask("Answer: ")
	if err != nil {
		return err
	}
	category, err := r.ask("Category (optional): ")
	if err != nil {
		return err
	}
	tags, err := r.ask("Tags (optional, space separated): ")
	if err != nil {
		return err
	}

	card := importexport.Card{Question: question, Answer: answer, Category: category, Tags: strings.Fields(tags)}
	if err := r.store.AddTerms(ctx, importexport.Terms([]importexport.Card{card})); err != nil {
		return err
	}
	r.println("Card added.")
	return nil
}

func (r *Runner) importCards(ctx context.Context) error {
	source, err := r.ask("File path or git URL: ")
	if err != nil || source == "" {
		return err
	}
	summary, err := r.Import(ctx, source)
	if err != nil {
		return err
	}
	r.println(summary.String())
	return nil
}

// Import loads cards from a local file or a git repository URL.
func (r *Runner) Import(ctx context.Context, source string) (importexport.Summary, error) {
	var (
		cards   []importexport.Card
		skipped int
		err     error
	)
	if importexport.IsRemoteSource(source) {
		cards, skipped, err = r.clone(ctx, source)
	} else {
		var data []byte
		data, err = r.readFile(source)
		if err != nil {
			return importexport.Summary{}, fmt.Errorf("failed to read %s: %w", source, err)
		}
		cards, skipped, err = importexport.ParseFile(source, data)
	}
	if err != nil {
		return importexport.Summary{}, err
	}
	summary, err := importexport.Import(ctx, r.store, cards)
	summary.Skipped += skipped
	return summary, err
}

func (r *Runner) exportCards(ctx context.Context) error {
	path, err := r.ask("Export to file (empty for a dated .txt): ")
	if err != nil {
		return err
	}
	if path == "" {
		path = importexport.ExportFilename(r.now(), "txt")
	}
	count, err := r.Export(ctx, path, drill.All())
	if errors.Is(err, importexport.ErrNotRepresentable) {
		r.printf("Cannot export as text (%v). Export to a .csv or .xlsx file instead.\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	r.printf("Exported %d terms to %s.\n", count, path)
	return nil
}

// Export writes the terms matching filter to path in the format implied by its
// extension.
func (r *Runner) Export(ctx context.Context, path string, filter drill.Filter) (int, error) {
	format, err := importexport.ExportFormatFor(path)
	if err != nil {
		return 0, err
	}
	var terms []*db.Term
	switch filter.Kind() {
	case drill.FilterCategory:
		terms, err = r.store.TermsInCategory(ctx, filter.ID())
	case drill.FilterTag:
		terms, err = r.store.TermsWithTag(ctx, filter.ID())
	default:
		terms, err = r.store.AllTerms(ctx)
	}
	if err != nil {
		return 0, err
	}
	data, err := importexport.BuildExport(format, terms)
	if err != nil {
		return 0, err
	}
	if err := r.writeFile(path, data); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("exported terms", "path", path, "format", format, "terms", len(terms))
	return len(terms), nil
}

func (r *Runner) showStats(ctx context.Context) error {
	stats, err := r.store.Stats(ctx)
	if err != nil {
		return err
	}
	r.printf("\n%s", stats.String())
	return nil
}

func (r *Runner) categoriesMenu(ctx context.Context) error {
	for {
		r.println("\nCategories l) list  a) add  d) delete  b) back")
		choice, err := r.ask("> ")
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "l":
			counts, err := r.store.CountTermsByCategory(ctx)
			if err != nil {
				return err
			}
			if len(counts) == 0 {
				r.println("No terms yet.")
			}
			for _, c := range counts {
				name := c.Name
				if c.CategoryID == nil {
					name = "(none)"
				}
				r.printf("  %s: %d\n", name, c.Count)
			}
		case "a":
			name, err := r.ask("New category: ")
			if err != nil {
				return err
			}
			if _, err := r.store.CreateCategory(ctx, name); err != nil {
				r.printf("Error: %v\n", err)
				continue
			}
			r.printf("Category %s created.\n", name)
		case "d":
			name, err := r.ask("Delete category: ")
			if err != nil {
				return err
			}
			category, err := r.store.CategoryByName(ctx, name)
			if err != nil {
				r.printf("Error: %v\n", err)
				continue
			}
			ok, err := r.confirm(fmt.Sprintf("Delete %s? Its terms become uncategorized.", category.Name))
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			if err := r.store.DeleteCategory(ctx, category.ID); err != nil {
				return err
			}
			r.printf("Category %s deleted.\n", category.Name)
		case "b", "":
			return nil
		default:
			r.printf("Unknown choice %q.\n", choice)
		}
	}
}

func (r *Runner) tagsMenu(ctx context.Context) error {
	for {
		r.println("\nTags l) list  a) add  d) delete  b) back")
		choice, err := r.ask("> ")
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "l":
			tags, err := r.store.Tags(ctx)
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				r.println("No tags yet.")
			}
			for _, tag := range tags {
				r.printf("  %s\n", tag.Name)
			}
		case "a":
			name, err := r.ask("New tag: ")
			if err != nil {
				return err
			}
			if _, err := r.store.CreateTag(ctx, name); err != nil {
				r.printf("Error: %v\n", err)
				continue
			}
			r.printf("Tag %s created.\n", name)
		case "d":
			name, err := r.ask("Delete tag: ")
			if err != nil {
				return err
			}
			tag, err := r.store.TagByName(ctx, name)
			if err != nil {
				r.printf("Error: %v\n", err)
				continue
			}
			if err := r.store.DeleteTag(ctx, tag.ID); err != nil {
				return err
			}
			r.printf("Tag %s deleted.\n", tag.Name)
		case "b", "":
			return nil
		default:
			r.printf("Unknown choice %q.\n", choice)
		}
	}
}
