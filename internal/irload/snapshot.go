package irload

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/verdict-engine/verdict/internal/extract"
)

// skipDirs are directory names excluded from snapshot loading.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
}

// LoadSnapshot reads a generated-code directory into an immutable
// snapshot. Paths are stored slash-separated and relative to root so
// snapshot hashes are machine independent. Binary files are skipped.
func LoadSnapshot(root string) (*extract.Snapshot, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("load snapshot: not a directory: %s", root)
	}

	files := make(map[string]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if !utf8.Valid(data) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("load snapshot: no text files under %s", root)
	}

	return extract.NewSnapshot(files), nil
}

// WriteSnapshot materializes a snapshot back to disk under root,
// creating directories as needed. Used after a repair run to persist the
// final code state.
func WriteSnapshot(snapshot *extract.Snapshot, root string) error {
	for _, path := range snapshot.Paths() {
		content, _ := snapshot.Content(path)
		dest := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	return nil
}
