package tui

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"
)

type stubFrames struct {
	levels []uint8
	bad    int
}

func (s stubFrames) Len() int          { return len(s.levels) }
func (s stubFrames) Path(i int) string { return fmt.Sprintf("frames/%03d.png", i+1) }

func (s stubFrames) Frame(i int) (*image.Gray, error) {
	if i == s.bad {
		return nil, errors.New("truncated png")
	}
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for p := range img.Pix {
		img.Pix[p] = s.levels[i]
	}
	return img, nil
}

func press(m Preview, msg tea.KeyMsg) Preview {
	next, _ := m.Update(msg)
	return next.(Preview)
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestPreviewNavigation(t *testing.T) {
	g := NewWithT(t)

	m := NewPreview(stubFrames{levels: []uint8{0, 255, 0, 255, 0}, bad: -1}, 0)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 5, Height: 3})
	m = sized.(Preview)

	g.Expect(m.Index()).To(Equal(0))
	m = press(m, tea.KeyMsg{Type: tea.KeyLeft})
	g.Expect(m.Index()).To(Equal(0))

	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	g.Expect(m.Index()).To(Equal(1))
	g.Expect(m.View()).To(HavePrefix("$$$$$\n$$$$$\n"))

	m = press(m, runes("G"))
	g.Expect(m.Index()).To(Equal(4))
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	g.Expect(m.Index()).To(Equal(4))

	m = press(m, runes("g"))
	g.Expect(m.Index()).To(Equal(0))
	g.Expect(m.View()).To(HavePrefix("     \n     \n"))
	g.Expect(m.View()).To(ContainSubstring("1/5"))
}

func TestPreviewPlaybackStopsAtEnd(t *testing.T) {
	g := NewWithT(t)

	m := NewPreview(stubFrames{levels: []uint8{0, 255, 0}, bad: -1}, 10*time.Millisecond)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Preview)
	g.Expect(cmd).NotTo(BeNil())

	for i := 0; i < 5; i++ {
		next, _ = m.Update(tickMsg(time.Now()))
		m = next.(Preview)
	}
	g.Expect(m.Index()).To(Equal(2))
	g.Expect(m.View()).To(ContainSubstring("paused"))
}

func TestPreviewShowsDecodeErrors(t *testing.T) {
	m := NewPreview(stubFrames{levels: []uint8{0, 0}, bad: 1}, 0)
	m = press(m, tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "truncated png") {
		t.Errorf("expected decode error in view, got %q", m.View())
	}
}

func TestPreviewQuit(t *testing.T) {
	m := NewPreview(stubFrames{levels: []uint8{0}, bad: -1}, 0)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
