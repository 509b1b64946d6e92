package trackstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// persistedMeasurement is the JSON-serializable form of a
// types.Measurement, flattening its VecDense/Dense fields to plain
// slices.
type persistedMeasurement struct {
	North     float64   `json:"north"`
	East      float64   `json:"east"`
	Timestamp float64   `json:"timestamp"`
	ScanIndex int       `json:"scan_index"`
	Cov       []float64 `json:"cov"` // row-major 2x2
}

// SaveScan persists one scan's raw measurements, keyed by run ID and
// scan index, so a run can later be replayed byte-for-byte without
// regenerating simulated data.
func (s *Store) SaveScan(runID string, scanIndex int, timestamp float64, measurements []types.Measurement) error {
	persisted := make([]persistedMeasurement, len(measurements))
	for i, m := range measurements {
		persisted[i] = persistedMeasurement{
			North:     m.North(),
			East:      m.East(),
			Timestamp: m.Timestamp,
			ScanIndex: m.ScanIndex,
			Cov:       flattenDense(m.Cov),
		}
	}
	blob, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("marshal measurements: %w", err)
	}
	_, err = s.Exec(
		`INSERT OR REPLACE INTO scan (run_id, scan_index, timestamp, measurements_json) VALUES (?, ?, ?, ?)`,
		runID, scanIndex, timestamp, string(blob),
	)
	return err
}

// PersistedScan is one replayable scan: its index, timestamp, and the
// measurements observed that scan.
type PersistedScan struct {
	ScanIndex    int
	Timestamp    float64
	Measurements []types.Measurement
}

// LoadScans returns every persisted scan for runID, in scan-index order.
func (s *Store) LoadScans(runID string) ([]PersistedScan, error) {
	rows, err := s.Query(
		`SELECT scan_index, timestamp, measurements_json FROM scan WHERE run_id = ? ORDER BY scan_index ASC`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PersistedScan
	for rows.Next() {
		var scanIndex int
		var ts float64
		var blob string
		if err := rows.Scan(&scanIndex, &ts, &blob); err != nil {
			return nil, err
		}
		var persisted []persistedMeasurement
		if err := json.Unmarshal([]byte(blob), &persisted); err != nil {
			return nil, fmt.Errorf("unmarshal measurements for scan %d: %w", scanIndex, err)
		}
		measurements := make([]types.Measurement, len(persisted))
		for i, p := range persisted {
			cov := unflattenDense(2, 2, p.Cov)
			meas, err := types.NewMeasurement(p.North, p.East, p.Timestamp, p.ScanIndex, cov)
			if err != nil {
				return nil, fmt.Errorf("reconstruct measurement for scan %d: %w", scanIndex, err)
			}
			measurements[i] = meas
		}
		out = append(out, PersistedScan{ScanIndex: scanIndex, Timestamp: ts, Measurements: measurements})
	}
	return out, rows.Err()
}

// SaveTrackFile persists every track and estimate in file under runID.
// Safe to call repeatedly against the same run (rows are upserted).
func (s *Store) SaveTrackFile(runID string, file *types.TrackFile) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, track := range file.All() {
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO track (run_id, track_id, status) VALUES (?, ?, ?)`,
			runID, int(track.Index), string(track.Status),
		); err != nil {
			return fmt.Errorf("save track %d: %w", track.Index, err)
		}
		for _, e := range track.Estimates {
			meanJSON, err := json.Marshal(e.Mean.RawVector().Data)
			if err != nil {
				return err
			}
			covJSON, err := json.Marshal(flattenDense(e.Cov))
			if err != nil {
				return err
			}
			var existence sql.NullFloat64
			if e.Existence != nil {
				existence = sql.NullFloat64{Float64: *e.Existence, Valid: true}
			}
			if _, err := tx.Exec(
				`INSERT OR REPLACE INTO estimate (run_id, track_id, scan_index, timestamp, mean_json, cov_json, posterior, existence)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, int(track.Index), e.ScanIndex, e.Timestamp, string(meanJSON), string(covJSON), boolToInt(e.Posterior), existence,
			); err != nil {
				return fmt.Errorf("save estimate track=%d scan=%d: %w", track.Index, e.ScanIndex, err)
			}
		}
	}
	return tx.Commit()
}

// LoadTrackFile reconstructs a TrackFile from persisted tracks and
// estimates for runID. Track indices are reassigned sequentially in
// ascending order of their original IDs, preserving relative order.
func (s *Store) LoadTrackFile(runID string) (*types.TrackFile, error) {
	trackRows, err := s.Query(`SELECT track_id, status FROM track WHERE run_id = ? ORDER BY track_id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer trackRows.Close()

	type trackRow struct {
		id     int
		status types.Status
	}
	var tracks []trackRow
	for trackRows.Next() {
		var id int
		var status string
		if err := trackRows.Scan(&id, &status); err != nil {
			return nil, err
		}
		tracks = append(tracks, trackRow{id: id, status: types.Status(status)})
	}
	if err := trackRows.Err(); err != nil {
		return nil, err
	}

	file := types.NewTrackFile()
	for _, tr := range tracks {
		estRows, err := s.Query(
			`SELECT scan_index, timestamp, mean_json, cov_json, posterior, existence
			 FROM estimate WHERE run_id = ? AND track_id = ? ORDER BY scan_index ASC`,
			runID, tr.id,
		)
		if err != nil {
			return nil, err
		}
		var estimates []types.Estimate
		for estRows.Next() {
			var scanIndex int
			var ts float64
			var meanJSON, covJSON string
			var posteriorInt int
			var existence sql.NullFloat64
			if err := estRows.Scan(&scanIndex, &ts, &meanJSON, &covJSON, &posteriorInt, &existence); err != nil {
				estRows.Close()
				return nil, err
			}
			var meanData []float64
			if err := json.Unmarshal([]byte(meanJSON), &meanData); err != nil {
				estRows.Close()
				return nil, err
			}
			var covData []float64
			if err := json.Unmarshal([]byte(covJSON), &covData); err != nil {
				estRows.Close()
				return nil, err
			}
			e := types.Estimate{
				Timestamp: ts,
				ScanIndex: scanIndex,
				Mean:      mat.NewVecDense(len(meanData), meanData),
				Cov:       unflattenDense(4, 4, covData),
				Posterior: posteriorInt != 0,
			}
			if existence.Valid {
				e = e.WithExistence(existence.Float64)
			}
			estimates = append(estimates, e)
		}
		estRows.Close()
		if err := estRows.Err(); err != nil {
			return nil, err
		}

		if len(estimates) == 0 {
			continue
		}
		track := types.NewTrack(estimates[0])
		for _, e := range estimates[1:] {
			if err := track.Append(e); err != nil {
				return nil, fmt.Errorf("replay track %d: %w", tr.id, err)
			}
		}
		idx := file.Insert(track)
		if tr.status == types.StatusTerminated {
			file.Terminate(idx)
		}
	}

	return file, nil
}

func flattenDense(m *mat.Dense) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}

func unflattenDense(r, c int, data []float64) *mat.Dense {
	return mat.NewDense(r, c, append([]float64(nil), data...))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
