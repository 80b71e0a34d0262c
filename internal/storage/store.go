// Package storage keeps finished runs on disk: one directory per run holding
// metadata.json and CSV series for snapshots, conservation totals and
// collision events.
package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/curvesim/internal/config"
	"github.com/san-kum/curvesim/internal/dynamo"
)

const (
	metadataFile     = "metadata.json"
	snapshotsFile    = "snapshots.csv"
	conservationFile = "conservation.csv"
	eventsFile       = "events.csv"
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
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Timestamp  time.Time `json:"timestamp"`
	Seed       uint64    `json:"seed"`
	A          float64   `json:"a"`
	B          float64   `json:"b"`
	Particles  int       `json:"particles"`
	Integrator string    `json:"integrator"`
	Method     string    `json:"collision_method"`
	DtMax      float64   `json:"dt_max"`
	MaxTime    float64   `json:"max_time"`

	Summary       dynamo.Summary     `json:"summary"`
	MomentumScale float64            `json:"momentum_scale"`
	Warning       string             `json:"warning,omitempty"`
	Metrics       map[string]float64 `json:"metrics"`
	Config        *config.Config     `json:"config"`
}

// NewMetadata describes a finished run. The ID is assigned by Save.
func NewMetadata(name string, cfg *config.Config, traj *dynamo.Trajectory) RunMetadata {
	meta := RunMetadata{
		Name:       name,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		A:          cfg.A,
		B:          cfg.B,
		Particles:  len(traj.Final.Particles),
		Integrator: cfg.Integrator,
		Method:     cfg.CollisionMethod.String(),
		DtMax:      cfg.DtMax,
		MaxTime:    cfg.MaxTime,
		Summary:    traj.Summary(),
		Metrics:    traj.Metrics,
		Config:     cfg,

		MomentumScale: traj.MomentumScale,
	}
	if traj.Warning != nil {
		meta.Warning = traj.Warning.Error()
	}
	return meta
}

// Save writes meta and the trajectory series under a new run directory and
// returns its id.
func (s *Store) Save(meta RunMetadata, traj *dynamo.Trajectory) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	writes := []struct {
		name  string
		write func(io.Writer) error
	}{
		{metadataFile, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		}},
		{snapshotsFile, func(w io.Writer) error { return WriteSnapshotsCSV(w, traj.Snapshots) }},
		{conservationFile, func(w io.Writer) error { return WriteConservationCSV(w, &traj.Conservation) }},
		{eventsFile, func(w io.Writer) error { return WriteEventsCSV(w, traj.Events) }},
	}
	for _, wr := range writes {
		if err := writeFile(filepath.Join(runDir, wr.name), wr.write); err != nil {
			return "", fmt.Errorf("storage: write %s: %w", wr.name, err)
		}
	}
	return meta.ID, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the metadata of every run, oldest first. Directories without
// readable metadata are skipped.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadConservation(runID string) (*dynamo.ConservationRecord, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, conservationFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadConservationCSV(f)
}

func (s *Store) LoadSnapshots(runID string) ([]dynamo.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, snapshotsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSnapshotsCSV(f)
}

func (s *Store) LoadEvents(runID string) ([]dynamo.CollisionEvent, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, eventsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEventsCSV(f)
}

// ConservationPath is the location of a run's conservation series.
func (s *Store) ConservationPath(runID string) string {
	return filepath.Join(s.baseDir, runID, conservationFile)
}
