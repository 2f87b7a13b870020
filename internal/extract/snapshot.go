package extract

import (
	"sort"

	"github.com/verdict-engine/verdict/internal/ir"
)

// Snapshot is an immutable view of the generated code: a path-to-content
// map plus its content hash.
//
// Only the repair orchestrator produces new snapshots, and it does so by
// building a fresh map and calling NewSnapshot -- no in-place edits are
// ever visible to concurrent readers.
type Snapshot struct {
	files map[string]string
	hash  string
}

// NewSnapshot copies the given file map into an immutable snapshot.
func NewSnapshot(files map[string]string) *Snapshot {
	copied := make(map[string]string, len(files))
	for p, c := range files {
		copied[p] = c
	}
	return &Snapshot{files: copied, hash: ir.SnapshotHash(copied)}
}

// Hash returns the snapshot's content hash.
func (s *Snapshot) Hash() string { return s.hash }

// Len returns the number of files.
func (s *Snapshot) Len() int { return len(s.files) }

// Content returns a file's content, or false if the path is absent.
func (s *Snapshot) Content(path string) (string, bool) {
	c, ok := s.files[path]
	return c, ok
}

// Paths returns all file paths in sorted order.
func (s *Snapshot) Paths() []string {
	paths := make([]string, 0, len(s.files))
	for p := range s.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Files returns a defensive copy of the file map. Used by the repair
// orchestrator as the base for the next snapshot.
func (s *Snapshot) Files() map[string]string {
	copied := make(map[string]string, len(s.files))
	for p, c := range s.files {
		copied[p] = c
	}
	return copied
}
