// Package storage records headless runs: one directory per run holding
// metadata.json and outputs.csv with the scaled axes, voltages and gates of
// every tick.
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

	"github.com/san-kum/chaoscv/internal/engine"
)

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
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Seed      int64     `json:"seed"`
	Dt        float64   `json:"dt"`
	PeriodMs  float64   `json:"period_ms"`
	Threshold int       `json:"threshold"`
	Range     int       `json:"range"`
	Ticks     int       `json:"ticks"`
}

var columns = []string{"tick", "sx", "sy", "sz", "v1", "v2", "v3", "g4", "g5", "g6"}

// Save writes one run. The snapshots are the per-tick outputs in order.
func (s *Store) Save(meta RunMetadata, snaps []engine.Snapshot) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Ticks = len(snaps)

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

	csvFile, err := os.Create(filepath.Join(runDir, "outputs.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(columns); err != nil {
		return "", err
	}

	for i, snap := range snaps {
		row := make([]string, 0, len(columns))
		row = append(row, strconv.Itoa(i))
		for _, v := range snap.Scaled {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, v := range snap.Voltages {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		for _, g := range snap.Gates {
			if g {
				row = append(row, "1")
			} else {
				row = append(row, "0")
			}
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, w.Error()
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

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
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

// LoadColumn reads one named output column ("sx".."g6") from a saved run.
func (s *Store) LoadColumn(runID, column string) ([]float64, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "outputs.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: empty outputs", runID)
	}

	col := -1
	for i, name := range records[0] {
		if name == column {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("run %s: no column %q", runID, column)
	}

	values := make([]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		v, err := strconv.ParseFloat(record[col], 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
