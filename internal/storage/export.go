package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/curvesim/internal/dynamo"
)

type ExportData struct {
	Metadata     RunMetadata             `json:"metadata"`
	Conservation ConservationSeries      `json:"conservation"`
	Snapshots    []dynamo.Snapshot       `json:"snapshots"`
	Events       []dynamo.CollisionEvent `json:"events"`
}

type ConservationSeries struct {
	Time            []float64 `json:"time"`
	Energy          []float64 `json:"energy"`
	Momentum        []float64 `json:"momentum"`
	CartesianX      []float64 `json:"px"`
	CartesianY      []float64 `json:"py"`
	AngularMomentum []float64 `json:"angular_momentum"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	rec, err := s.LoadConservation(runID)
	if err != nil {
		return nil, err
	}
	snaps, err := s.LoadSnapshots(runID)
	if err != nil {
		return nil, err
	}
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Metadata: *meta,
		Conservation: ConservationSeries{
			Time:            rec.Time,
			Energy:          rec.Energy,
			Momentum:        rec.Momentum,
			CartesianX:      rec.CartesianX,
			CartesianY:      rec.CartesianY,
			AngularMomentum: rec.AngularMomentum,
		},
		Snapshots: snaps,
		Events:    events,
	}, nil
}

func WriteJSON(w io.Writer, data *ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, data)
}
