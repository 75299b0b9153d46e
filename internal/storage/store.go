package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/asciivid/internal/player"
)

// Store keeps one directory per recorded playback under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string        `json:"id"`
	FramesDir string        `json:"frames_dir"`
	Audio     string        `json:"audio,omitempty"`
	Player    string        `json:"player,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Interval  time.Duration `json:"interval_ns"`
	Frames    int           `json:"frames"`
	Wall      time.Duration `json:"wall_ns"`
	Overruns  int           `json:"overruns"`
	MeanCost  time.Duration `json:"mean_cost_ns"`
	MaxCost   time.Duration `json:"max_cost_ns"`
}

// Drift is the wall time beyond frames*interval.
func (m RunMetadata) Drift() time.Duration {
	return m.Wall - time.Duration(m.Frames)*m.Interval
}

// Timing is one row of frames.csv.
type Timing struct {
	Index int
	Cols  int
	Rows  int
	Cost  time.Duration
	Slept time.Duration
}

func (s *Store) Save(framesDir, audio, playerName string, stats *player.Stats) (string, error) {
	runID := fmt.Sprintf("%s_%d", filepath.Base(framesDir), time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		FramesDir: framesDir,
		Audio:     audio,
		Player:    playerName,
		Timestamp: stats.Started,
		Interval:  stats.Interval,
		Frames:    stats.Count(),
		Wall:      stats.Wall,
		Overruns:  stats.Overruns(),
	}
	var total time.Duration
	for _, f := range stats.Frames {
		total += f.Cost
		if f.Cost > meta.MaxCost {
			meta.MaxCost = f.Cost
		}
	}
	if meta.Frames > 0 {
		meta.MeanCost = total / time.Duration(meta.Frames)
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "frames.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"frame", "path", "cols", "rows", "cost_us", "sleep_us"}); err != nil {
		return "", err
	}
	for _, f := range stats.Frames {
		row := []string{
			strconv.Itoa(f.Index),
			f.Path,
			strconv.Itoa(f.Cols),
			strconv.Itoa(f.Rows),
			strconv.FormatInt(f.Cost.Microseconds(), 10),
			strconv.FormatInt(f.Slept.Microseconds(), 10),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns all readable runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTimings(runID string) ([]Timing, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []Timing{}, nil
	}

	timings := make([]Timing, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 6 {
			continue
		}
		var t Timing
		var cost, slept int64
		if t.Index, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("frames.csv: frame %q: %w", record[0], err)
		}
		t.Cols, _ = strconv.Atoi(record[2])
		t.Rows, _ = strconv.Atoi(record[3])
		if cost, err = strconv.ParseInt(record[4], 10, 64); err != nil {
			return nil, fmt.Errorf("frames.csv: cost %q: %w", record[4], err)
		}
		if slept, err = strconv.ParseInt(record[5], 10, 64); err != nil {
			return nil, fmt.Errorf("frames.csv: sleep %q: %w", record[5], err)
		}
		t.Cost = time.Duration(cost) * time.Microsecond
		t.Slept = time.Duration(slept) * time.Microsecond
		timings = append(timings, t)
	}
	return timings, nil
}
