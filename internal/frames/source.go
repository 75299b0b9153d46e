package frames

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
)

var ErrNoFrames = errors.New("frames: directory contains no frames")

// Source is the materialised, sorted list of frame files for one playback.
type Source struct {
	dir   string
	paths []string
}

// Open lists dir and fixes the playback order.
func Open(dir string) (*Source, error) {
	paths, err := List(dir)
	if err != nil {
		return nil, err
	}
	return &Source{dir: dir, paths: paths}, nil
}

// List returns the regular files in dir sorted by full path, ascending.
// Callers are expected to zero-pad sequence numbers so that lexicographic
// order is chronological.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}

	sort.Strings(paths)
	return paths, nil
}

func (s *Source) Dir() string { return s.dir }

func (s *Source) Len() int { return len(s.paths) }

func (s *Source) Path(i int) string { return s.paths[i] }

// Frame decodes the i-th frame.
func (s *Source) Frame(i int) (*image.Gray, error) {
	if i < 0 || i >= len(s.paths) {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", i, len(s.paths))
	}
	return Decode(s.paths[i])
}
