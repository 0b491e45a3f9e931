package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/logger"
)

func (r *Runner) drillMenu(ctx context.Context) error {
	r.println("Drill a) all terms  c) one category  t) one tag  b) back")
	choice, err := r.ask("> ")
	if err != nil {
		return err
	}

	var filter drill.Filter
	switch strings.ToLower(choice) {
	case "a", "":
		filter = drill.All()
	case "c":
		name, err := r.ask("Category: ")
		if err != nil {
			return err
		}
		category, err := r.store.CategoryByName(ctx, name)
		if err != nil {
			return err
		}
		filter = drill.ByCategory(category.ID)
	case "t":
		name, err := r.ask("Tag: ")
		if err != nil {
			return err
		}
		tag, err := r.store.TagByName(ctx, name)
		if err != nil {
			return err
		}
		filter = drill.ByTag(tag.ID)
	default:
		return nil
	}

	prefs, err := r.store.Preferences(ctx)
	if err != nil {
		return err
	}
	cfg, err := drill.ConfigFromPreferences(prefs)
	if err != nil {
		return err
	}
	return r.RunDrill(ctx, filter, cfg)
}

// RunDrill builds a drill and walks the user through it. Graded terms are
// stored when the drill ends, including when it is cut short.
func (r *Runner) RunDrill(ctx context.Context, filter drill.Filter, cfg drill.Config) error {
	d, err := drill.Make(ctx, r.store, filter, cfg, r.drillOpts...)
	if err != nil {
		if errors.Is(err, drill.ErrInvalidConfiguration) {
			r.println("The drill preferences are invalid, please fix them under p) preferences.")
		}
		return err
	}
	if d == nil {
		r.println("No terms to drill.")
		return nil
	}

	logger.Debug("drill started", "filter", filter.String(), "terms", d.Len(), "reversed", cfg.Reversed)
	r.printf("Drilling %d terms (%s). Enter shows the answer, x stops.\n", d.Len(), filter)

	loopErr := r.drillLoop(d, cfg.Reversed)
	if err := r.flush(ctx, d, cfg.Reversed); err != nil {
		return err
	}
	stopped := errors.Is(loopErr, errExit) || errors.Is(loopErr, io.EOF)
	if loopErr != nil && !stopped {
		return loopErr
	}

	r.printf("Reviewed %d of %d terms.\n", len(d.UpdatedTerms()), d.Len())
	if stopped {
		return nil
	}
	return r.tagMissed(ctx, d.MissedTerms(cfg.Reversed))
}

func (r *Runner) drillLoop(d *drill.Drill, reversed bool) error {
	for !d.IsCompleted() {
		term, err := d.CurrentTerm()
		if err != nil {
			return err
		}
		prompt, response := drill.Sides(term, reversed)
		r.printf("\n[%d/%d] %s\n", d.Position()+1, d.Len(), prompt)
		reply, err := r.ask("? ")
		if err != nil {
			return err
		}
		if strings.EqualFold(reply, "x") {
			return errExit
		}
		r.printf("    %s\n", response)

		grade, err := r.askGrade()
		if err != nil {
			return err
		}
		if err := d.Grade(grade, reversed); err != nil {
			return err
		}
		d.Advance()
	}
	return nil
}

func (r *Runner) askGrade() (int, error) {
	for {
		reply, err := r.ask("Grade 1 (missed) to 5 (easy), x stops: ")
		if err != nil {
			return 0, err
		}
		if strings.EqualFold(reply, "x") {
			return 0, errExit
		}
		grade, err := strconv.Atoi(reply)
		if err == nil && drill.ValidGrade(grade) {
			return grade, nil
		}
		r.println("Please enter a number from 1 to 5.")
	}
}

func (r *Runner) flush(ctx context.Context, d *drill.Drill, reversed bool) error {
	updated := d.UpdatedTerms()
	if len(updated) == 0 {
		return nil
	}
	if err := r.store.PersistGradedTerms(ctx, updated, reversed); err != nil {
		return fmt.Errorf("failed to save drill results: %w", err)
	}
	logger.Info("drill results saved", "terms", len(updated), "reversed", reversed)
	return nil
}

// tagMissed offers to label the missed terms so they can be drilled again by
// tag.
func (r *Runner) tagMissed(ctx context.Context, missed []*db.Term) error {
	if len(missed) == 0 {
		return nil
	}
	r.printf("Missed %d terms:\n", len(missed))
	for _, term := range missed {
		r.printf("  %s: %s\n", term.Question, term.Answer)
	}
	name, err := r.ask("Tag them with (empty to skip): ")
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	if name == "" {
		return nil
	}
	tag, err := r.store.EnsureTag(ctx, name)
	if err != nil {
		return err
	}
	for _, term := range missed {
		if err := r.store.ApplyTag(ctx, term.ID, tag.ID); err != nil {
			return err
		}
	}
	r.printf("Tagged %d terms with %s.\n", len(missed), tag.Name)
	return nil
}
