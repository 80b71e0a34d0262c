package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/config"
	"github.com/san-kum/curvesim/internal/dynamo"
)

func testTrajectory() *dynamo.Trajectory {
	traj := &dynamo.Trajectory{
		Snapshots: []dynamo.Snapshot{
			{Time: 0, Step: 0, Phi: []float64{0, 3}, PhiDot: []float64{1, -1}},
			{Time: 0.1, Step: 10, Phi: []float64{0.1, 2.9}, PhiDot: []float64{1, -1}},
		},
		Events: []dynamo.CollisionEvent{
			{Time: 1.4, Step: 140, I: 0, J: 1, Method: collision.ParallelTransport, EnergyError: 1e-16},
		},
		Metrics:       map[string]float64{"energy_drift": 1e-14},
		MomentumScale: 2,
		Steps:         300,
	}
	traj.Conservation.Append(dynamo.ConservationPoint{Time: 0, Energy: 1, Momentum: 0, CartesianY: 2})
	traj.Conservation.Append(dynamo.ConservationPoint{Time: 0.1, Energy: 1.0000000000000002, Momentum: 1e-17, CartesianY: -2})
	return traj
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.GetPreset("head_on")
	traj := testTrajectory()
	meta := NewMetadata("head_on", cfg, traj)

	runID, err := st.Save(meta, traj)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(runID, "head_on_"))

	got, err := st.Load(runID)
	require.NoError(t, err)
	require.Equal(t, runID, got.ID)
	require.Equal(t, uint64(5), got.Seed)
	require.Equal(t, "parallel_transport", got.Method)
	require.Equal(t, 1e-14, got.Metrics["energy_drift"])
	require.Equal(t, 1, got.Summary.Collisions)
	require.Equal(t, cfg, got.Config)

	rec, err := st.LoadConservation(runID)
	require.NoError(t, err)
	require.Equal(t, &traj.Conservation, rec, "values must survive at full precision")

	snaps, err := st.LoadSnapshots(runID)
	require.NoError(t, err)
	require.Equal(t, traj.Snapshots, snaps)

	events, err := st.LoadEvents(runID)
	require.NoError(t, err)
	require.Equal(t, traj.Events, events)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	require.Empty(t, runs)

	traj := testTrajectory()
	cfg := config.DefaultConfig()
	first := NewMetadata("a", cfg, traj)
	first.Timestamp = time.Unix(100, 0)
	second := NewMetadata("b", cfg, traj)
	second.Timestamp = time.Unix(200, 0)

	_, err = st.Save(second, traj)
	require.NoError(t, err)
	_, err = st.Save(first, traj)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "a", runs[0].Name)
	require.Equal(t, "b", runs[1].Name)
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	require.Error(t, err)
	_, err = st.LoadConservation("nope")
	require.Error(t, err)
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	traj := testTrajectory()
	runID, err := st.Save(NewMetadata("head_on", config.GetPreset("head_on"), traj), traj)
	require.NoError(t, err)

	data, err := st.Export(runID)
	require.NoError(t, err)
	require.Len(t, data.Snapshots, 2)
	require.Equal(t, traj.Conservation.Energy, data.Conservation.Energy)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Contains(t, decoded, "metadata")
	require.Contains(t, decoded, "conservation")

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, data))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestReadCSVRejectsShortRows(t *testing.T) {
	_, err := ReadConservationCSV(strings.NewReader("time,energy\n0,1\n"))
	require.Error(t, err)
}

func TestWriteConservationCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConservationCSV(&buf, &testTrajectory().Conservation))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "time,energy,momentum,px,py,angular_momentum", lines[0])
	require.Equal(t, "0,1,0,0,2,0", lines[1])
}
