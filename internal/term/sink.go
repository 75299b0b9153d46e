package term

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/ansi"
	xterm "github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

var ErrNotTerminal = errors.New("term: output is not a terminal")

// ClearSequence homes the cursor and erases the screen in one write.
const ClearSequence = ansi.CursorHomePosition + ansi.EraseEntireScreen

// Sink is the terminal the frames are drawn on.
type Sink struct {
	out    io.Writer
	fd     uintptr
	sizeFn func(fd uintptr) (int, int, error)
	hidden bool
}

// Open wraps f, which must be a terminal.
func Open(f *os.File) (*Sink, error) {
	if !IsTerminal(f) {
		return nil, fmt.Errorf("%s: %w", f.Name(), ErrNotTerminal)
	}
	return &Sink{out: f, fd: f.Fd(), sizeFn: xterm.GetSize}, nil
}

// NewSink builds a sink over an arbitrary writer with a fixed-size query.
// Used for non-tty output and tests.
func NewSink(out io.Writer, size func() (int, int, error)) *Sink {
	return &Sink{
		out: out,
		sizeFn: func(uintptr) (int, int, error) {
			return size()
		},
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Size returns the current columns and rows.
func (s *Sink) Size() (int, int, error) {
	cols, rows, err := s.sizeFn(s.fd)
	if err != nil {
		return 0, 0, fmt.Errorf("query terminal size: %w", err)
	}
	if cols < 1 || rows < 1 {
		return 0, 0, fmt.Errorf("query terminal size: got %dx%d", cols, rows)
	}
	return cols, rows, nil
}

func (s *Sink) Clear() error {
	if _, err := io.WriteString(s.out, ClearSequence); err != nil {
		return fmt.Errorf("clear terminal: %w", err)
	}
	return nil
}

func (s *Sink) Draw(frame string) error {
	if _, err := io.WriteString(s.out, frame); err != nil {
		return fmt.Errorf("draw frame: %w", err)
	}
	return nil
}

// HideCursor hides the cursor until Restore.
func (s *Sink) HideCursor() error {
	if _, err := io.WriteString(s.out, ansi.HideCursor); err != nil {
		return err
	}
	s.hidden = true
	return nil
}

// Restore shows the cursor again if it was hidden. Safe to call twice.
func (s *Sink) Restore() error {
	if !s.hidden {
		return nil
	}
	s.hidden = false
	_, err := io.WriteString(s.out, ansi.ShowCursor)
	return err
}
