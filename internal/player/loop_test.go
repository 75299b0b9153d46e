package player_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/asciivid/internal/player"
	"github.com/san-kum/asciivid/internal/term"
)

type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

type fakeFrames struct {
	names   []string
	levels  []uint8
	failAt  int
	decoded []int
}

func newFrames(levels ...uint8) *fakeFrames {
	f := &fakeFrames{levels: levels, failAt: -1}
	for i := range levels {
		f.names = append(f.names, fmt.Sprintf("frames/%04d.png", i+1))
	}
	return f
}

func (f *fakeFrames) Len() int          { return len(f.levels) }
func (f *fakeFrames) Path(i int) string { return f.names[i] }

func (f *fakeFrames) Frame(i int) (*image.Gray, error) {
	f.decoded = append(f.decoded, i)
	if i == f.failAt {
		return nil, errors.New("corrupt frame")
	}
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for p := range img.Pix {
		img.Pix[p] = f.levels[i]
	}
	return img, nil
}

// fakeScreen charges costs[i] of clock time to the i-th draw.
type fakeScreen struct {
	clock   *fakeClock
	costs   []time.Duration
	cols    int
	rows    int
	sizeErr error
	writes  []string
	drawn   []string
}

func (s *fakeScreen) Size() (int, int, error) {
	if s.sizeErr != nil {
		return 0, 0, s.sizeErr
	}
	return s.cols, s.rows, nil
}

func (s *fakeScreen) Clear() error {
	s.writes = append(s.writes, term.ClearSequence)
	return nil
}

func (s *fakeScreen) Draw(frame string) error {
	if n := len(s.drawn); n < len(s.costs) {
		s.clock.now = s.clock.now.Add(s.costs[n])
	}
	s.writes = append(s.writes, frame)
	s.drawn = append(s.drawn, frame)
	return nil
}

type fakeAudio struct {
	waited int
	err    error
}

func (a *fakeAudio) Wait() error {
	a.waited++
	return a.err
}

type recorder struct{ seen []int }

func (r *recorder) OnFrame(t player.FrameTiming) { r.seen = append(r.seen, t.Index) }

var _ = Describe("PacingSleep", func() {
	DescribeTable("sleeps the remainder or the floor",
		func(elapsed, want time.Duration) {
			Expect(player.PacingSleep(elapsed, 33*time.Millisecond, time.Millisecond)).To(Equal(want))
		},
		Entry("instant frame", time.Duration(0), 33*time.Millisecond),
		Entry("cheap frame", 10*time.Millisecond, 23*time.Millisecond),
		Entry("just under", 32*time.Millisecond, time.Millisecond),
		Entry("exactly the interval", 33*time.Millisecond, time.Millisecond),
		Entry("overrun", 80*time.Millisecond, time.Millisecond),
	)
})

var _ = Describe("Loop", func() {
	var (
		clock  *fakeClock
		frames *fakeFrames
		screen *fakeScreen
		audio  *fakeAudio
		loop   *player.Loop
	)

	BeforeEach(func() {
		clock = &fakeClock{now: time.Unix(1700000000, 0)}
		frames = newFrames(0, 255, 0, 255)
		screen = &fakeScreen{clock: clock, cols: 6, rows: 3}
		audio = &fakeAudio{}
		loop = player.New(player.Config{}, frames, screen, audio).WithClock(clock)
	})

	It("starts idle and finishes done", func() {
		Expect(loop.State()).To(Equal(player.Idle))
		_, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(loop.State()).To(Equal(player.Done))
		Expect(audio.waited).To(Equal(1))
	})

	It("draws every frame once, in order, clearing before each", func() {
		rec := &recorder{}
		loop.AddObserver(rec)

		stats, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(frames.decoded).To(Equal([]int{0, 1, 2, 3}))
		Expect(rec.seen).To(Equal([]int{0, 1, 2, 3}))
		Expect(stats.Count()).To(Equal(4))

		Expect(screen.writes).To(HaveLen(8))
		for i := 0; i < 4; i++ {
			Expect(screen.writes[2*i]).To(Equal(term.ClearSequence))
		}

		black := strings.Repeat(strings.Repeat(" ", 6)+"\n", 3)
		white := strings.Repeat(strings.Repeat("$", 6)+"\n", 3)
		Expect(screen.drawn).To(Equal([]string{black, white, black, white}))
		for i, f := range stats.Frames {
			Expect(f.Path).To(Equal(frames.names[i]))
			Expect(f.Cols).To(Equal(6))
			Expect(f.Rows).To(Equal(3))
		}
	})

	It("sleeps max(interval - cost, floor) after each frame", func() {
		screen.costs = []time.Duration{
			5 * time.Millisecond,
			33 * time.Millisecond,
			50 * time.Millisecond,
			20 * time.Millisecond,
		}

		stats, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(clock.sleeps).To(Equal([]time.Duration{
			28 * time.Millisecond,
			time.Millisecond,
			time.Millisecond,
			13 * time.Millisecond,
		}))

		var want time.Duration
		for i, c := range screen.costs {
			want += c + clock.sleeps[i]
		}
		Expect(stats.Wall).To(Equal(want))
		Expect(stats.Overruns()).To(Equal(2))
		Expect(stats.Drift()).To(Equal(want - 4*33*time.Millisecond))
	})

	It("honours a custom interval and floor", func() {
		loop = player.New(player.Config{Interval: 40 * time.Millisecond, MinSleep: 2 * time.Millisecond},
			frames, screen, audio).WithClock(clock)
		screen.costs = []time.Duration{10 * time.Millisecond, 45 * time.Millisecond}

		_, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(clock.sleeps[:2]).To(Equal([]time.Duration{30 * time.Millisecond, 2 * time.Millisecond}))
	})

	It("aborts on the first undecodable frame without waiting for audio", func() {
		frames.failAt = 2

		stats, err := loop.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("frame 2 (frames/0003.png)")))
		Expect(err).To(MatchError(ContainSubstring("corrupt frame")))
		Expect(stats.Count()).To(Equal(2))
		Expect(screen.drawn).To(HaveLen(2))
		Expect(audio.waited).To(BeZero())
		Expect(loop.State()).To(Equal(player.Playing))
	})

	It("treats a failed size query as fatal", func() {
		screen.sizeErr = errors.New("no tty")

		_, err := loop.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("no tty")))
		Expect(frames.decoded).To(BeEmpty())
	})

	It("re-reads the terminal size on every frame", func() {
		loop.AddObserver(resizeAfterFirst{screen})

		stats, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames[0].Cols).To(Equal(6))
		Expect(stats.Frames[1].Cols).To(Equal(2))
		Expect(screen.drawn[1]).To(Equal("$$\n"))
	})

	It("surfaces an audio wait failure after all frames are drawn", func() {
		audio.err = errors.New("player crashed")

		stats, err := loop.Run(context.Background())
		Expect(err).To(MatchError("player crashed"))
		Expect(stats.Count()).To(Equal(4))
		Expect(loop.State()).To(Equal(player.Draining))
	})

	It("stops between frames when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		loop.AddObserver(cancelAfter{at: 1, cancel: cancel})

		stats, err := loop.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
		Expect(stats.Count()).To(Equal(2))
		Expect(audio.waited).To(BeZero())
	})

	It("refuses to run twice", func() {
		_, err := loop.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		_, err = loop.Run(context.Background())
		Expect(err).To(HaveOccurred())
	})
})

type resizeAfterFirst struct{ s *fakeScreen }

func (r resizeAfterFirst) OnFrame(player.FrameTiming) {
	r.s.cols, r.s.rows = 2, 1
}

type cancelAfter struct {
	at     int
	cancel context.CancelFunc
}

func (c cancelAfter) OnFrame(t player.FrameTiming) {
	if t.Index == c.at {
		c.cancel()
	}
}
