package importexport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/smith3v/lexilogio/pkg/logger"
)

// maxDeckFileSize bounds a single file read out of a deck repository.
const maxDeckFileSize = 16 << 20

// CloneCards shallow-clones a git repository into memory and parses every
// deck file found at HEAD.
func CloneCards(ctx context.Context, url string) ([]Card, int, error) {
	logger.Info("cloning deck repository", "url", url)
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to clone repo %s: %w", url, err)
	}
	return CardsFromRepository(repo)
}

// CardsFromRepository parses the deck files of the HEAD commit. Files with an
// unknown extension are ignored; files that fail to parse are logged and
// counted as skipped.
func CardsFromRepository(repo *git.Repository) ([]Card, int, error) {
	head, err := repo.Head()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load HEAD commit: %w", err)
	}
	files, err := commit.Files()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list files: %w", err)
	}

	var cards []Card
	skipped := 0
	err = files.ForEach(func(f *object.File) error {
		if _, formatErr := FormatFromName(f.Name); formatErr != nil {
			return nil
		}
		if f.Size > maxDeckFileSize {
			logger.Warn("skipping oversized deck file", "file", f.Name, "size", f.Size)
			skipped++
			return nil
		}
		data, readErr := readGitFile(f)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, readErr)
		}
		parsed, fileSkipped, parseErr := ParseFile(f.Name, data)
		if parseErr != nil {
			logger.Warn("skipping deck file", "file", f.Name, "error", parseErr)
			skipped++
			return nil
		}
		logger.Debug("parsed deck file", "file", f.Name, "cards", len(parsed), "skipped", fileSkipped)
		cards = append(cards, withDefaultCategory(parsed, f.Name)...)
		skipped += fileSkipped
		return nil
	})
	if err != nil {
		return nil, skipped, err
	}
	return cards, skipped, nil
}

func readGitFile(f *object.File) ([]byte, error) {
	r, err := f.Reader()
	if err != nil {
		return nil, err
	}
	data, readErr := io.ReadAll(r)
	return data, errors.Join(readErr, r.Close())
}

// withDefaultCategory files cards without a category under the directory that
// holds them.
func withDefaultCategory(cards []Card, name string) []Card {
	dir := path.Dir(name)
	if dir == "." || dir == "/" {
		return cards
	}
	category := path.Base(dir)
	for i := range cards {
		if cards[i].Category == "" {
			cards[i].Category = category
		}
	}
	return cards
}
