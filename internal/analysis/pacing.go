package analysis

import (
	"sort"
	"time"

	"github.com/guptarohit/asciigraph"
)

// Summary condenses the per-frame costs of one playback.
type Summary struct {
	Frames   int
	Mean     time.Duration
	P95      time.Duration
	Max      time.Duration
	Overruns int
	// Budget is frames*interval; Drift is wall time beyond it.
	Budget time.Duration
	Drift  time.Duration
}

// Summarize computes the pacing summary. wall is the measured playback time.
func Summarize(costs []time.Duration, interval, wall time.Duration) Summary {
	s := Summary{Frames: len(costs)}
	if len(costs) == 0 {
		return s
	}

	sorted := append([]time.Duration(nil), costs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, c := range costs {
		total += c
		if c >= interval {
			s.Overruns++
		}
	}
	s.Mean = total / time.Duration(len(costs))
	s.Max = sorted[len(sorted)-1]
	s.P95 = Percentile(sorted, 0.95)
	s.Budget = time.Duration(len(costs)) * interval
	s.Drift = wall - s.Budget
	return s
}

// Percentile uses nearest-rank on an ascending slice.
func Percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p*float64(len(sorted))+0.999999) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

// StutterPeriod finds the dominant period, in frames, of the cost series.
// Zero means no periodic component was found.
func StutterPeriod(costs []time.Duration) float64 {
	if len(costs) < 4 {
		return 0
	}
	data := Millis(costs)
	ps := PowerSpectrum(data)
	n := len(ps) * 2

	maxPower, maxIdx := 0.0, 0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower, maxIdx = ps[i], i
		}
	}
	if maxIdx == 0 || maxPower < 1e-9 {
		return 0
	}
	return float64(n) / float64(maxIdx)
}

func Millis(ds []time.Duration) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = float64(d.Microseconds()) / 1000
	}
	return out
}

// PlotPacing draws cost and sleep per frame, in milliseconds.
func PlotPacing(costs, sleeps []time.Duration, width, height int) string {
	if len(costs) == 0 {
		return ""
	}
	return asciigraph.PlotMany([][]float64{Millis(costs), Millis(sleeps)},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends("cost", "sleep"),
		asciigraph.Caption("ms per frame"),
	)
}

// PlotSpectrum draws the cost power spectrum.
func PlotSpectrum(costs []time.Duration, width, height int) string {
	ps := PowerSpectrum(Millis(costs))
	if len(ps) < 2 {
		return ""
	}
	return asciigraph.Plot(ps[1:],
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("cost power spectrum"),
	)
}
