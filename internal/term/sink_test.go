package term

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClearSequence(t *testing.T) {
	if ClearSequence != "\x1b[H\x1b[2J" {
		t.Errorf("unexpected clear sequence %q", ClearSequence)
	}
}

func TestSinkWrites(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, func() (int, int, error) { return 80, 24, nil })

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := s.Draw("ab\ncd\n"); err != nil {
		t.Fatalf("draw: %v", err)
	}

	if got := buf.String(); got != ClearSequence+"ab\ncd\n" {
		t.Errorf("unexpected output %q", got)
	}

	cols, rows, err := s.Size()
	if err != nil || cols != 80 || rows != 24 {
		t.Errorf("expected 80x24, got %dx%d (%v)", cols, rows, err)
	}
}

func TestSinkSizeErrors(t *testing.T) {
	boom := errors.New("boom")
	s := NewSink(&bytes.Buffer{}, func() (int, int, error) { return 0, 0, boom })
	if _, _, err := s.Size(); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}

	s = NewSink(&bytes.Buffer{}, func() (int, int, error) { return 0, 24, nil })
	if _, _, err := s.Size(); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestCursorRestore(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf, func() (int, int, error) { return 1, 1, nil })

	if err := s.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("restore without hide should write nothing, got %q", buf.String())
	}

	if err := s.HideCursor(); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("second restore: %v", err)
	}
	if strings.Count(buf.String(), "\x1b[?25h") != 1 {
		t.Errorf("expected a single show-cursor sequence, got %q", buf.String())
	}
}

func TestOpenRejectsRegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()

	if _, err := Open(f); !errors.Is(err, ErrNotTerminal) {
		t.Errorf("expected ErrNotTerminal, got %v", err)
	}
}
