// Package artifact publishes build outputs into a run-scoped store.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNoMatches is returned when an artifact path resolves to zero
// files and the pipeline selected the strict zero-match policy.
var ErrNoMatches = errors.New("no files matched artifact path")

// Store is a filesystem-backed artifact store. Each run gets its own
// namespace under the store root; artifacts of distinct runs never
// collide.
type Store struct {
	root string
}

// NewStore creates the store root if needed.
func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("creating artifact store root: %w", err)
	}
	return &Store{root: root}, nil
}

// Resolve expands pattern against the workspace. The pattern may name
// a single file, a directory (expanded to the files under it), or a
// doublestar glob. Results are workspace-relative, sorted, deduplicated.
func Resolve(workspace, pattern string) ([]string, error) {
	fsys := os.DirFS(workspace)

	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	var files []string
	for _, m := range matches {
		info, err := fs.Stat(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", m, err)
		}
		if info.IsDir() {
			sub, err := filesUnder(fsys, m)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
			continue
		}
		files = append(files, m)
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func filesUnder(fsys fs.FS, dir string) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// Publish copies the given workspace-relative files into the store
// under <root>/<runID>/<name>/, preserving relative layout. It returns
// the destination paths.
func (s *Store) Publish(runID, name, workspace string, files []string) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoMatches
	}

	base := filepath.Join(s.root, runID, name)

	published := make([]string, 0, len(files))
	for _, rel := range files {
		src := filepath.Join(workspace, rel)
		dst := filepath.Join(base, filepath.FromSlash(rel))

		if err := copyFile(src, dst); err != nil {
			return nil, fmt.Errorf("publishing %s: %w", rel, err)
		}
		published = append(published, dst)
	}

	slog.Info("published artifact", "run", runID, "artifact", name, "files", len(published))
	return published, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(dst), err)
	}

	if err := os.WriteFile(dst, data, info.Mode()); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
