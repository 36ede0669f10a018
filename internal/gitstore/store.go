// Package gitstore provides read access to the schema repository: candidate
// enumeration over the worktree and timestamp resolution over commit history.
package gitstore

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Store provides disk-based git repository access
type Store struct {
	repo   *git.Repository
	root   string
	logger *slog.Logger
}

// Config holds git store configuration
type Config struct {
	// Path is the repository location; parent directories are searched for
	// a .git directory.
	Path   string
	Logger *slog.Logger
}

// Open discovers and opens the repository containing cfg.Path.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		cfg.Path = "."
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	repo, err := git.PlainOpenWithOptions(cfg.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", cfg.Path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	return &Store{
		repo:   repo,
		root:   worktree.Filesystem.Root(),
		logger: cfg.Logger,
	}, nil
}

// Root returns the worktree root directory.
func (s *Store) Root() string {
	return s.root
}

// ReadFile reads a worktree file by repository-relative path.
func (s *Store) ReadFile(p string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(p)))
}

// Candidates enumerates files under dir (repository-relative) carrying the
// given extension, at any depth. Keys are normalized repository-relative
// slash paths, directly comparable with commit tree entry names.
func (s *Store) Candidates(dir, ext string) (map[string]struct{}, error) {
	pattern := path.Join(filepath.ToSlash(dir), "**", "*."+ext)

	files := make(map[string]struct{})
	err := doublestar.GlobWalk(os.DirFS(s.root), pattern, func(p string, d fs.DirEntry) error {
		files[path.Clean(p)] = struct{}{}
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	s.logger.Debug("candidates enumerated", "dir", dir, "count", len(files))
	return files, nil
}

// Resolution records the commit timestamp assigned to one candidate file.
type Resolution struct {
	Path    string
	Updated time.Time
}

// ResolveUpdated walks commit history newest-first and assigns each pending
// path the time of the first commit whose snapshot tree contains it, removing
// the path from pending. Paths still pending after the walk were never
// committed; reporting that is the caller's responsibility.
//
// The assigned time is that of the newest commit in which the path is
// present. It is not the commit that last changed the file's content: a file
// merely carried along in a newer snapshot still resolves to that snapshot.
func (s *Store) ResolveUpdated(pending map[string]struct{}) ([]Resolution, error) {
	iter, err := s.repo.Log(&git.LogOptions{Order: git.LogOrderCommitterTime})
	if err != nil {
		return nil, fmt.Errorf("failed to walk history: %w", err)
	}
	defer iter.Close()

	var resolved []Resolution
	err = iter.ForEach(func(commit *object.Commit) error {
		if len(pending) == 0 {
			return storer.ErrStop
		}

		tree, err := commit.Tree()
		if err != nil {
			return fmt.Errorf("failed to get tree for %s: %w", commit.Hash, err)
		}
		updated := commitTime(commit)

		walker := object.NewTreeWalker(tree, true, nil)
		defer walker.Close()
		for {
			name, entry, err := walker.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to walk tree for %s: %w", commit.Hash, err)
			}
			if !entry.Mode.IsFile() {
				continue
			}
			if _, ok := pending[name]; !ok {
				continue
			}

			resolved = append(resolved, Resolution{Path: name, Updated: updated})
			delete(pending, name)
			s.logger.Debug("resolved candidate",
				"path", name,
				"commit", commit.Hash.String(),
				"updated", updated,
			)
			if len(pending) == 0 {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resolved, nil
}

// commitTime shifts the committer timestamp by its recorded zone offset and
// renders the result as a UTC instant, so the index shows the committer's
// local wall clock.
func commitTime(commit *object.Commit) time.Time {
	when := commit.Committer.When
	_, offset := when.Zone()
	return time.Unix(when.Unix()+int64(offset), 0).UTC()
}
