package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/asciivid/internal/player"
	"github.com/san-kum/asciivid/internal/viz"
)

// Preview steps through frames without audio or pacing guarantees.
type Preview struct {
	frames   player.Frames
	interval time.Duration
	index    int
	playing  bool
	width    int
	height   int
	art      string
	err      error
}

type tickMsg time.Time

func NewPreview(frames player.Frames, interval time.Duration) Preview {
	if interval <= 0 {
		interval = player.DefaultInterval
	}
	return Preview{frames: frames, interval: interval, width: 80, height: 24}
}

func (m Preview) Init() tea.Cmd { return nil }

func (m Preview) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.render()
		return m, nil
	case tickMsg:
		if !m.playing {
			return m, nil
		}
		if m.index >= m.frames.Len()-1 {
			m.playing = false
			return m, nil
		}
		m.index++
		m.render()
		return m, m.tick()
	}
	return m, nil
}

func (m Preview) handleKey(msg tea.KeyMsg) (Preview, tea.Cmd) {
	last := m.frames.Len() - 1
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "right", "l":
		m.index = min(m.index+1, last)
	case "left", "h":
		m.index = max(m.index-1, 0)
	case "pgdown", "J":
		m.index = min(m.index+30, last)
	case "pgup", "K":
		m.index = max(m.index-30, 0)
	case "home", "g":
		m.index = 0
	case "end", "G":
		m.index = last
	case " ", "p":
		m.playing = !m.playing
		if m.playing {
			m.render()
			return m, m.tick()
		}
		return m, nil
	default:
		return m, nil
	}
	m.render()
	return m, nil
}

func (m *Preview) render() {
	m.art, m.err = "", nil
	if m.frames.Len() == 0 {
		return
	}
	rows := m.height - 1
	if m.width < 1 || rows < 1 {
		return
	}
	img, err := m.frames.Frame(m.index)
	if err != nil {
		m.err = err
		return
	}
	m.art, m.err = viz.Render(img, m.width, rows)
}

func (m Preview) Index() int { return m.index }

func (m Preview) View() string {
	var b strings.Builder
	if m.err != nil {
		b.WriteString(viz.StatusError.Render("error: "+m.err.Error()) + "\n")
	} else {
		b.WriteString(m.art)
	}
	b.WriteString(m.status())
	return b.String()
}

func (m Preview) status() string {
	n := m.frames.Len()
	if n == 0 {
		return viz.Subtle.Render("no frames")
	}
	state := viz.StatusWarn.Render("paused")
	if m.playing {
		state = viz.StatusOK.Render("playing")
	}
	pos := fmt.Sprintf("%d/%d", m.index+1, n)
	name := filepath.Base(m.frames.Path(m.index))
	bar := viz.ProgressBar(float64(m.index+1)/float64(n), 20)
	keys := viz.KeyHint.Render("←/→ step  space play  g/G ends  q quit")
	return strings.Join([]string{state, viz.MetricValue.Render(pos), viz.Subtle.Render(name), bar, keys}, "  ")
}

// RunPreview opens the preview on the alternate screen.
func RunPreview(frames player.Frames, interval time.Duration) error {
	m := NewPreview(frames, interval)
	m.render()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
