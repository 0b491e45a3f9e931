package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/smith3v/lexilogio/pkg/db"
	"github.com/smith3v/lexilogio/pkg/deck"
	"github.com/smith3v/lexilogio/pkg/drill"
	"github.com/smith3v/lexilogio/pkg/importexport"
	"github.com/smith3v/lexilogio/pkg/logger"
)

// Store is everything the runner needs from a deck.
type Store interface {
	drill.Source
	importexport.Store

	CountTerms(ctx context.Context) (int64, error)
	AddTerms(ctx context.Context, terms []*db.Term) error
	PersistGradedTerms(ctx context.Context, terms []*db.Term, reversed bool) error

	Preferences(ctx context.Context) (db.Preferences, error)
	SavePreferences(ctx context.Context, prefs *db.Preferences) error

	CreateCategory(ctx context.Context, name string) (*db.Category, error)
	CategoryByName(ctx context.Context, name string) (*db.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	CountTermsByCategory(ctx context.Context) ([]deck.CategoryCount, error)

	Tags(ctx context.Context) ([]db.Tag, error)
	CreateTag(ctx context.Context, name string) (*db.Tag, error)
	TagByName(ctx context.Context, name string) (*db.Tag, error)
	EnsureTag(ctx context.Context, name string) (*db.Tag, error)
	ApplyTag(ctx context.Context, termID, tagID uint) error
	DeleteTag(ctx context.Context, id uint) error

	Stats(ctx context.Context) (deck.Stats, error)
}

// ClonerFunc loads cards from a remote git repository.
type ClonerFunc func(ctx context.Context, url string) ([]importexport.Card, int, error)

// Runner is the interactive line-mode front-end.
type Runner struct {
	in       *bufio.Scanner
	out      io.Writer
	store    Store
	deckName string

	drillOpts []drill.Option
	clone     ClonerFunc
	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte) error
	now       func() time.Time
}

type Option func(*Runner)

// WithDrillOptions passes options through to every drill the runner makes.
func WithDrillOptions(opts ...drill.Option) Option {
	return func(r *Runner) { r.drillOpts = append(r.drillOpts, opts...) }
}

func WithCloner(clone ClonerFunc) Option {
	return func(r *Runner) { r.clone = clone }
}

// WithFiles replaces the file system access used by import and export.
func WithFiles(read func(string) ([]byte, error), write func(string, []byte) error) Option {
	return func(r *Runner) {
		r.readFile = read
		r.writeFile = write
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func New(in io.Reader, out io.Writer, store Store, deckName string, opts ...Option) *Runner {
	r := &Runner{
		in:        bufio.NewScanner(in),
		out:       out,
		store:     store,
		deckName:  deckName,
		clone:     importexport.CloneCards,
		readFile:  readFile,
		writeFile: writeFile,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// errExit unwinds nested menus when the user asks to leave.
var errExit = errors.New("runner: exit")

// Run shows the main menu until the user exits or input ends.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		count, err := r.store.CountTerms(ctx)
		if err != nil {
			return err
		}
		r.printf("\nDeck %q: %d terms\n", r.deckName, count)
		r.println("d) drill  p) preferences  a) add card  i) import  e) export")
		r.println("s) stats  c) categories  t) tags  x) exit")
		choice, err := r.ask("> ")
		if err != nil {
			return ignoreEnd(err)
		}

		switch strings.ToLower(choice) {
		case "d":
			err = r.drillMenu(ctx)
		case "p":
			err = r.preferencesMenu(ctx)
		case "a":
			err = r.addCard(ctx)
		case "i":
			err = r.importCards(ctx)
		case "e":
			err = r.exportCards(ctx)
		case "s":
			err = r.showStats(ctx)
		case "c":
			err = r.categoriesMenu(ctx)
		case "t":
			err = r.tagsMenu(ctx)
		case "x", "q":
			return nil
		case "":
			continue
		default:
			r.printf("Unknown choice %q.\n", choice)
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, errExit) {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("runner action failed", "choice", choice, "error", err)
			r.printf("Error: %v\n", err)
		}
	}
}

// ask prints prompt and reads one trimmed line. It returns io.EOF once input
// is exhausted.
func (r *Runner) ask(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		fmt.Fprintln(r.out)
		return "", io.EOF
	}
	return strings.TrimSpace(r.in.Text()), nil
}

func (r *Runner) confirm(prompt string) (bool, error) {
	answer, err := r.ask(prompt + " [y/N] ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Runner) println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

func ignoreEnd(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, errExit) {
		return nil
	}
	return err
}
