package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	CostUS  []int64     `json:"cost_us"`
	SleepUS []int64     `json:"sleep_us"`
	Sizes   [][2]int    `json:"sizes"`
}

func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	timings, err := s.LoadTimings(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Run:     *meta,
		CostUS:  make([]int64, len(timings)),
		SleepUS: make([]int64, len(timings)),
		Sizes:   make([][2]int, len(timings)),
	}
	for i, t := range timings {
		data.CostUS[i] = t.Cost.Microseconds()
		data.SleepUS[i] = t.Slept.Microseconds()
		data.Sizes[i] = [2]int{t.Cols, t.Rows}
	}
	return data, nil
}

// ExportJSON writes the run to path, or to stdout when path is "-".
func (s *Store) ExportJSON(runID, path string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
