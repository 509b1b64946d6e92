package manager

import (
	"testing"

	"github.com/oskarba/radartrack/internal/track/assoc"
	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/initiate"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/terminate"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

func measCov(v float64) *mat.Dense {
	c := mat.NewDense(2, 2, nil)
	c.Set(0, 0, v)
	c.Set(1, 1, v)
	return c
}

func newPDAFManager(t *testing.T) *Manager {
	t.Helper()
	m, err := motion.New(0.1)
	if err != nil {
		t.Fatalf("motion.New: %v", err)
	}
	g, err := gate.New(0.99, 0)
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}
	updater, err := assoc.NewPDAFUpdater(m, g, 0.9, 1e-6)
	if err != nil {
		t.Fatalf("NewPDAFUpdater: %v", err)
	}
	init, err := initiate.NewMofNInitiator(updater, 3, 5, true, 10.0, 10.0)
	if err != nil {
		t.Fatalf("NewMofNInitiator: %v", err)
	}
	term, err := terminate.NewMofNTerminator(3)
	if err != nil {
		t.Fatalf("NewMofNTerminator: %v", err)
	}
	return New(updater, init, term, Config{AllowDoubleUse: true})
}

func TestManager_ConfirmsAndTracksAStationaryTarget(t *testing.T) {
	mgr := newPDAFManager(t)

	for scan := 1; scan <= 8; scan++ {
		ts := float64(scan)
		meas, err := types.NewMeasurement(10, 20, ts, scan, measCov(0.05))
		if err != nil {
			t.Fatalf("NewMeasurement: %v", err)
		}
		if err := mgr.Step([]types.Measurement{meas}, ts, scan); err != nil {
			t.Fatalf("Step %d: %v", scan, err)
		}
	}

	confirmed := mgr.TrackFile().Confirmed()
	if len(confirmed) != 1 {
		t.Fatalf("expected 1 confirmed track, got %d", len(confirmed))
	}
	last, ok := confirmed[0].LastPosterior()
	if !ok {
		t.Fatal("expected a posterior estimate")
	}
	if dist := (last.North()-10)*(last.North()-10) + (last.East()-20)*(last.East()-20); dist > 1 {
		t.Errorf("tracked position too far from target: north=%v east=%v", last.North(), last.East())
	}
}

func TestManager_TerminatesTrackAfterSustainedMisses(t *testing.T) {
	mgr := newPDAFManager(t)

	for scan := 1; scan <= 5; scan++ {
		ts := float64(scan)
		meas, _ := types.NewMeasurement(10, 20, ts, scan, measCov(0.05))
		if err := mgr.Step([]types.Measurement{meas}, ts, scan); err != nil {
			t.Fatalf("Step %d: %v", scan, err)
		}
	}
	if len(mgr.TrackFile().Confirmed()) != 1 {
		t.Fatalf("expected track to be confirmed before the miss streak begins")
	}

	for scan := 6; scan <= 9; scan++ {
		ts := float64(scan)
		if err := mgr.Step(nil, ts, scan); err != nil {
			t.Fatalf("Step %d: %v", scan, err)
		}
	}

	if len(mgr.TrackFile().Confirmed()) != 0 {
		t.Error("expected track to be terminated after sustained misses")
	}
	all := mgr.TrackFile().All()
	if len(all) != 1 || all[0].Status != types.StatusTerminated {
		t.Error("expected the track to remain in the file, marked terminated")
	}
}

func TestManager_TwoWellSeparatedTargetsStayDistinct(t *testing.T) {
	mgr := newPDAFManager(t)

	for scan := 1; scan <= 8; scan++ {
		ts := float64(scan)
		a, _ := types.NewMeasurement(0, 0, ts, scan, measCov(0.05))
		b, _ := types.NewMeasurement(500, 500, ts, scan, measCov(0.05))
		if err := mgr.Step([]types.Measurement{a, b}, ts, scan); err != nil {
			t.Fatalf("Step %d: %v", scan, err)
		}
	}

	confirmed := mgr.TrackFile().Confirmed()
	if len(confirmed) != 2 {
		t.Fatalf("expected 2 confirmed tracks, got %d", len(confirmed))
	}
}
