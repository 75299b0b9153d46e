package player

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/asciivid/internal/logging"
	"github.com/san-kum/asciivid/internal/viz"
)

// Loop plays every frame once, in order, paced to a fixed interval, then
// waits for the audio process.
type Loop struct {
	cfg       Config
	frames    Frames
	screen    Screen
	audio     Audio
	clock     Clock
	logger    *slog.Logger
	observers []Observer
	state     State
}

func New(cfg Config, frames Frames, screen Screen, audio Audio) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MinSleep <= 0 {
		cfg.MinSleep = DefaultMinSleep
	}
	return &Loop{
		cfg:    cfg,
		frames: frames,
		screen: screen,
		audio:  audio,
		clock:  SystemClock,
		logger: logging.NewNop(),
		state:  Idle,
	}
}

func (l *Loop) WithClock(c Clock) *Loop {
	l.clock = c
	return l
}

func (l *Loop) WithLogger(logger *slog.Logger) *Loop {
	l.logger = logging.NewComponentLogger(logger, "player")
	return l
}

func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) State() State { return l.state }

// PacingSleep is the pause after a frame that took elapsed: the rest of the
// interval, or floor once the interval is used up.
func PacingSleep(elapsed, interval, floor time.Duration) time.Duration {
	if elapsed < interval {
		return interval - elapsed
	}
	return floor
}

// Run plays the frames. Any failure aborts immediately; the stats gathered
// so far are returned alongside the error. Cancellation is only observed
// between frames.
func (l *Loop) Run(ctx context.Context) (*Stats, error) {
	if l.state != Idle {
		return nil, fmt.Errorf("playback already %s", l.state)
	}

	stats := &Stats{
		Interval: l.cfg.Interval,
		Started:  l.clock.Now(),
		Frames:   make([]FrameTiming, 0, l.frames.Len()),
	}

	l.state = Playing
	l.logger.Info("playback started",
		logging.Int("frames", l.frames.Len()),
		logging.Duration("interval", l.cfg.Interval))

	for i := 0; i < l.frames.Len(); i++ {
		select {
		case <-ctx.Done():
			stats.Wall = l.clock.Now().Sub(stats.Started)
			return stats, ctx.Err()
		default:
		}

		timing, err := l.step(i)
		if err != nil {
			stats.Wall = l.clock.Now().Sub(stats.Started)
			l.logger.Error("playback aborted", logging.Int("frame", i), logging.Error(err))
			return stats, err
		}

		l.clock.Sleep(timing.Slept)

		stats.Frames = append(stats.Frames, timing)
		for _, o := range l.observers {
			o.OnFrame(timing)
		}
	}

	stats.Wall = l.clock.Now().Sub(stats.Started)

	l.state = Draining
	l.logger.Info("frames finished, waiting for audio",
		logging.Duration("wall", stats.Wall),
		logging.Int("overruns", stats.Overruns()))
	if err := l.audio.Wait(); err != nil {
		return stats, err
	}

	l.state = Done
	return stats, nil
}

func (l *Loop) step(i int) (FrameTiming, error) {
	path := l.frames.Path(i)
	start := l.clock.Now()

	cols, rows, err := l.screen.Size()
	if err != nil {
		return FrameTiming{}, fmt.Errorf("frame %d: %w", i, err)
	}

	img, err := l.frames.Frame(i)
	if err != nil {
		return FrameTiming{}, fmt.Errorf("frame %d (%s): %w", i, path, err)
	}

	art, err := viz.Render(img, cols, rows)
	if err != nil {
		return FrameTiming{}, fmt.Errorf("frame %d (%s): render: %w", i, path, err)
	}

	if err := l.screen.Clear(); err != nil {
		return FrameTiming{}, fmt.Errorf("frame %d: %w", i, err)
	}
	if err := l.screen.Draw(art); err != nil {
		return FrameTiming{}, fmt.Errorf("frame %d: %w", i, err)
	}

	cost := l.clock.Now().Sub(start)
	timing := FrameTiming{
		Index: i,
		Path:  path,
		Cols:  cols,
		Rows:  rows,
		Cost:  cost,
		Slept: PacingSleep(cost, l.cfg.Interval, l.cfg.MinSleep),
	}
	l.logger.Debug("frame drawn",
		logging.Int("frame", i),
		logging.Duration("cost", cost),
		logging.Duration("sleep", timing.Slept))
	return timing, nil
}
