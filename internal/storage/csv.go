package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/curvesim/internal/collision"
	"github.com/san-kum/curvesim/internal/dynamo"
)

var (
	conservationHeader = []string{"time", "energy", "momentum", "px", "py", "angular_momentum"}
	snapshotHeader     = []string{"time", "step", "index", "phi", "phi_dot"}
	eventHeader        = []string{"time", "step", "i", "j", "method", "energy_error", "momentum_error", "violated"}
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteConservationCSV(w io.Writer, rec *dynamo.ConservationRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(conservationHeader); err != nil {
		return err
	}
	for i := 0; i < rec.Len(); i++ {
		p := rec.At(i)
		row := []string{
			formatFloat(p.Time),
			formatFloat(p.Energy),
			formatFloat(p.Momentum),
			formatFloat(p.CartesianX),
			formatFloat(p.CartesianY),
			formatFloat(p.AngularMomentum),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSnapshotsCSV writes one row per particle per snapshot.
func WriteSnapshotsCSV(w io.Writer, snaps []dynamo.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return err
	}
	for _, s := range snaps {
		for i := range s.Phi {
			row := []string{
				formatFloat(s.Time),
				strconv.Itoa(s.Step),
				strconv.Itoa(i),
				formatFloat(s.Phi[i]),
				formatFloat(s.PhiDot[i]),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteEventsCSV(w io.Writer, events []dynamo.CollisionEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventHeader); err != nil {
		return err
	}
	for _, ev := range events {
		row := []string{
			formatFloat(ev.Time),
			strconv.Itoa(ev.Step),
			strconv.Itoa(ev.I),
			strconv.Itoa(ev.J),
			ev.Method.String(),
			formatFloat(ev.EnergyError),
			formatFloat(ev.MomentumError),
			strconv.FormatBool(ev.Violated),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadConservationCSV(r io.Reader) (*dynamo.ConservationRecord, error) {
	rows, err := readRows(r, len(conservationHeader))
	if err != nil {
		return nil, err
	}
	rec := &dynamo.ConservationRecord{}
	for n, row := range rows {
		vals, err := parseFloats(row)
		if err != nil {
			return nil, fmt.Errorf("conservation row %d: %w", n+1, err)
		}
		rec.Append(dynamo.ConservationPoint{
			Time:            vals[0],
			Energy:          vals[1],
			Momentum:        vals[2],
			CartesianX:      vals[3],
			CartesianY:      vals[4],
			AngularMomentum: vals[5],
		})
	}
	return rec, nil
}

// ReadSnapshotsCSV groups consecutive rows with the same step into snapshots.
func ReadSnapshotsCSV(r io.Reader) ([]dynamo.Snapshot, error) {
	rows, err := readRows(r, len(snapshotHeader))
	if err != nil {
		return nil, err
	}
	var snaps []dynamo.Snapshot
	for n, row := range rows {
		t, err1 := strconv.ParseFloat(row[0], 64)
		step, err2 := strconv.Atoi(row[1])
		phi, err3 := strconv.ParseFloat(row[3], 64)
		phiDot, err4 := strconv.ParseFloat(row[4], 64)
		for _, err := range []error{err1, err2, err3, err4} {
			if err != nil {
				return nil, fmt.Errorf("snapshot row %d: %w", n+1, err)
			}
		}
		if len(snaps) == 0 || snaps[len(snaps)-1].Step != step {
			snaps = append(snaps, dynamo.Snapshot{Time: t, Step: step})
		}
		last := &snaps[len(snaps)-1]
		last.Phi = append(last.Phi, phi)
		last.PhiDot = append(last.PhiDot, phiDot)
	}
	return snaps, nil
}

func ReadEventsCSV(r io.Reader) ([]dynamo.CollisionEvent, error) {
	rows, err := readRows(r, len(eventHeader))
	if err != nil {
		return nil, err
	}
	events := make([]dynamo.CollisionEvent, 0, len(rows))
	for n, row := range rows {
		var ev dynamo.CollisionEvent
		var errs [7]error
		ev.Time, errs[0] = strconv.ParseFloat(row[0], 64)
		ev.Step, errs[1] = strconv.Atoi(row[1])
		ev.I, errs[2] = strconv.Atoi(row[2])
		ev.J, errs[3] = strconv.Atoi(row[3])
		ev.Method, errs[4] = collision.ParseMethod(row[4])
		ev.EnergyError, errs[5] = strconv.ParseFloat(row[5], 64)
		ev.MomentumError, errs[6] = strconv.ParseFloat(row[6], 64)
		for _, err := range errs {
			if err != nil {
				return nil, fmt.Errorf("event row %d: %w", n+1, err)
			}
		}
		if ev.Violated, err = strconv.ParseBool(row[7]); err != nil {
			return nil, fmt.Errorf("event row %d: %w", n+1, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// readRows returns the data rows after the header, each with exactly width
// fields.
func readRows(r io.Reader, width int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = width
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(row []string) ([]float64, error) {
	out := make([]float64, len(row))
	for i, s := range row {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
