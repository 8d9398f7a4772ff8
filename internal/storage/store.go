// Package storage persists finished runs, one directory per run holding
// metadata.json and the convergence series as series.csv.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/coingas/internal/config"
	"github.com/san-kum/coingas/internal/metrics"
	"github.com/san-kum/coingas/internal/sim"
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
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Policy      string             `json:"policy"`
	Disks       int                `json:"disks"`
	TotalEnergy int                `json:"total_energy"`
	Capacity    int                `json:"capacity"`
	Seed        uint64             `json:"seed"`
	Dt          float64            `json:"dt"`
	Collisions  int64              `json:"collisions"`
	Steps       int                `json:"steps"`
	ElapsedMs   int64              `json:"elapsed_ms"`
	StopReason  string             `json:"stop_reason"`
	Occupancy   []float64          `json:"occupancy"`
	Metrics     map[string]float64 `json:"metrics"`
	Config      *config.Config     `json:"config"`
}

// SeriesRow is one (collision, level) point of the convergence series.
type SeriesRow struct {
	Collision int64   `csv:"collision"`
	Level     int     `csv:"level"`
	Occupancy float64 `csv:"occupancy"`
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_s%d_%d", cfg.Policy, cfg.Seed, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		Policy:      cfg.Policy,
		Disks:       cfg.Disks,
		TotalEnergy: cfg.TotalEnergy,
		Capacity:    cfg.Capacity,
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Collisions:  result.Collisions,
		Steps:       result.Steps,
		ElapsedMs:   result.Elapsed.Milliseconds(),
		StopReason:  string(result.StopReason),
		Occupancy:   result.Final.Occupancy,
		Metrics:     result.Metrics,
		Config:      cfg,
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

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := gocsv.Marshal(SeriesRows(result.Series), csvFile); err != nil {
		return "", fmt.Errorf("writing series: %w", err)
	}

	return runID, nil
}

// SeriesRows flattens snapshots into long form.
func SeriesRows(series []metrics.Snapshot) []SeriesRow {
	rows := make([]SeriesRow, 0, len(series)*4)
	for _, snap := range series {
		for k, v := range snap.Occupancy {
			rows = append(rows, SeriesRow{Collision: snap.Collision, Level: k, Occupancy: v})
		}
	}
	return rows
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadSeries rebuilds the snapshots of a run from series.csv.
func (s *Store) LoadSeries(runID string) ([]metrics.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []SeriesRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		if err == gocsv.ErrEmptyCSVFile {
			return []metrics.Snapshot{}, nil
		}
		return nil, err
	}

	series := make([]metrics.Snapshot, 0)
	for _, row := range rows {
		if len(series) == 0 || series[len(series)-1].Collision != row.Collision {
			series = append(series, metrics.Snapshot{Collision: row.Collision})
		}
		snap := &series[len(series)-1]
		for len(snap.Occupancy) <= row.Level {
			snap.Occupancy = append(snap.Occupancy, 0)
		}
		snap.Occupancy[row.Level] = row.Occupancy
	}

	return series, nil
}

// Path returns the directory of a run.
func (s *Store) Path(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
