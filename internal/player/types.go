package player

import (
	"image"
	"time"
)

const (
	DefaultInterval = 33 * time.Millisecond
	DefaultMinSleep = time.Millisecond
)

// State is the lifecycle of one playback.
type State int

const (
	Idle State = iota
	Playing
	Draining
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Draining:
		return "draining"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Frames is an ordered, fully enumerated frame list.
type Frames interface {
	Len() int
	Path(i int) string
	Frame(i int) (*image.Gray, error)
}

// Screen is the terminal the frames are drawn on.
type Screen interface {
	Size() (cols, rows int, err error)
	Clear() error
	Draw(frame string) error
}

// Audio is the already-started audio process.
type Audio interface {
	Wait() error
}

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type Observer interface {
	OnFrame(t FrameTiming)
}

type Config struct {
	Interval time.Duration
	MinSleep time.Duration
}

// FrameTiming records how one frame was paced.
type FrameTiming struct {
	Index int
	Path  string
	Cols  int
	Rows  int
	// Cost covers size query, render, clear and draw.
	Cost  time.Duration
	Slept time.Duration
}

type Stats struct {
	Interval time.Duration
	Started  time.Time
	Wall     time.Duration
	Frames   []FrameTiming
}

func (s *Stats) Count() int { return len(s.Frames) }

// Overruns counts frames whose cost reached the interval.
func (s *Stats) Overruns() int {
	n := 0
	for _, f := range s.Frames {
		if f.Cost >= s.Interval {
			n++
		}
	}
	return n
}

// Drift is how far the playback fell behind N*interval.
func (s *Stats) Drift() time.Duration {
	return s.Wall - time.Duration(len(s.Frames))*s.Interval
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}
