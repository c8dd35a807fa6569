// Package marker persists the first-run initialization record as a small YAML file.
package marker

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/debprep/internal/ports"
)

// Record is the content of the marker file.
type Record struct {
	CompletedAt time.Time `yaml:"completed_at"`
	RunID       string    `yaml:"run_id,omitempty"`
}

// Store implements ports.FlagStore over a single file.
type Store struct {
	fs    ports.FileSystem
	path  string
	runID string
	now   func() time.Time
}

// New creates a Store. runID is written into new records.
func New(fsys ports.FileSystem, path, runID string) *Store {
	return &Store{fs: fsys, path: path, runID: runID, now: time.Now}
}

// Path returns the marker location.
func (s *Store) Path() string {
	return s.path
}

// Get reports whether a valid marker exists. A marker that cannot be parsed is an error.
func (s *Store) Get() (bool, error) {
	rec, err := s.Record()
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// Record returns the stored record, or nil when there is none.
func (s *Store) Record() (*Record, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read marker %s: %w", s.path, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse marker %s: %w", s.path, err)
	}
	if rec.CompletedAt.IsZero() {
		return nil, fmt.Errorf("parse marker %s: missing completed_at", s.path)
	}
	return &rec, nil
}

// Set writes a fresh record atomically.
func (s *Store) Set() error {
	data, err := yaml.Marshal(Record{CompletedAt: s.now().UTC().Truncate(time.Second), RunID: s.runID})
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := s.fs.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write marker %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the marker. A missing marker is not an error.
func (s *Store) Clear() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove marker %s: %w", s.path, err)
	}
	return nil
}

var _ ports.FlagStore = (*Store)(nil)
