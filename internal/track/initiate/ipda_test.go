package initiate

import (
	"testing"

	"github.com/oskarba/radartrack/internal/track/assoc"
	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/types"
)

func newTestIPDAFUpdater(t *testing.T) *assoc.IPDAFUpdater {
	t.Helper()
	m, err := motion.New(0.1)
	if err != nil {
		t.Fatalf("motion.New: %v", err)
	}
	g, err := gate.New(0.99, 0)
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}
	u, err := assoc.NewIPDAFUpdater(m, g, 0.9, 1.0, 1e6, 0.99, 0.2)
	if err != nil {
		t.Fatalf("NewIPDAFUpdater: %v", err)
	}
	return u
}

func TestNewIPDAInitiator_RejectsBadThresholds(t *testing.T) {
	u := newTestIPDAFUpdater(t)
	if _, err := NewIPDAInitiator(u, 0.9, 0.9, 0.5, true, 10, 10); err == nil {
		t.Fatal("expected error when drop threshold equals promote threshold")
	}
	if _, err := NewIPDAInitiator(u, 0.9, 0.05, 0.02, true, 10, 10); err == nil {
		t.Fatal("expected error when seed existence is below drop threshold")
	}
}

func TestIPDAInitiator_PromotesRepeatedlyDetectedTarget(t *testing.T) {
	init, err := NewIPDAInitiator(newTestIPDAFUpdater(t), 0.9, 0.05, 0.5, true, 10, 10)
	if err != nil {
		t.Fatalf("NewIPDAInitiator: %v", err)
	}

	claimed := map[int]bool{}
	var track *types.Track
	for scan := 1; scan <= 20; scan++ {
		ts := float64(scan)
		meas, err := types.NewMeasurement(50, 75, ts, scan, measCov(0.05))
		if err != nil {
			t.Fatalf("NewMeasurement: %v", err)
		}
		promoted, _, err := init.Step([]types.Measurement{meas}, ts, scan, claimed)
		if err != nil {
			t.Fatalf("Step %d: %v", scan, err)
		}
		if len(promoted) > 0 {
			track = promoted[0]
			break
		}
	}
	if track == nil {
		t.Fatal("expected repeated detections to eventually cross the promote threshold")
	}
	last, ok := track.LastPosterior()
	if !ok || last.Existence == nil {
		t.Fatal("expected promoted track's last estimate to carry existence")
	}
	if *last.Existence < 0.9 {
		t.Errorf("existence at promotion = %v, want >= 0.9", *last.Existence)
	}
}

func TestIPDAInitiator_DropsCandidateWithNoDetections(t *testing.T) {
	init, err := NewIPDAInitiator(newTestIPDAFUpdater(t), 0.9, 0.3, 0.5, true, 10, 10)
	if err != nil {
		t.Fatalf("NewIPDAInitiator: %v", err)
	}

	claimed := map[int]bool{}
	meas, err := types.NewMeasurement(50, 75, 1, 1, measCov(0.05))
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}
	if _, _, err := init.Step([]types.Measurement{meas}, 1, 1, claimed); err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if len(init.candidates) != 1 {
		t.Fatalf("expected 1 candidate after seeding, got %d", len(init.candidates))
	}

	for scan := 2; scan <= 10; scan++ {
		if _, _, err := init.Step(nil, float64(scan), scan, claimed); err != nil {
			t.Fatalf("Step %d: %v", scan, err)
		}
		if len(init.candidates) == 0 {
			return
		}
	}
	t.Error("expected existence to decay to the drop threshold within 10 misses")
}
