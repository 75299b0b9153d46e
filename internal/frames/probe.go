package frames

import (
	"runtime"
	"sync"
)

// ProbeResult pairs a probed header with its error; Info.Path is always set.
type ProbeResult struct {
	Info Info
	Err  error
}

// ProbeAll probes every path using up to workers goroutines over contiguous
// chunks. Results keep the order of paths.
func ProbeAll(paths []string, workers int) []ProbeResult {
	out := make([]ProbeResult, len(paths))
	parallelFor(len(paths), workers, 16, func(start, end int) {
		for i := start; i < end; i++ {
			info, err := Probe(paths[i])
			info.Path = paths[i]
			out[i] = ProbeResult{Info: info, Err: err}
		}
	})
	return out
}

func parallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
