package assoc

import (
	"testing"

	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/types"
)

func TestNewIPDAFUpdater_RejectsInvalidParams(t *testing.T) {
	m, _ := motion.New(0.25)
	g, _ := gate.New(0.99, 1000)
	cases := []struct {
		name                       string
		pd, rate, area, pi11, pi21 float64
	}{
		{"bad PD", 0, 1, 1e6, 0.95, 0.05},
		{"negative clutter rate", 0.9, -1, 1e6, 0.95, 0.05},
		{"non-positive scan area", 0.9, 1, 0, 0.95, 0.05},
		{"pi11 out of range", 0.9, 1, 1e6, 1.5, 0.05},
		{"pi21 out of range", 0.9, 1, 1e6, 0.95, -0.1},
	}
	for _, c := range cases {
		if _, err := NewIPDAFUpdater(m, g, c.pd, c.rate, c.area, c.pi11, c.pi21); err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestIPDAFUpdater_StepProducesExistenceOnEveryEstimate(t *testing.T) {
	m, err := motion.New(0.25)
	if err != nil {
		t.Fatalf("motion.New: %v", err)
	}
	g, err := gate.New(0.99, 1000)
	if err != nil {
		t.Fatalf("gate.New: %v", err)
	}
	u, err := NewIPDAFUpdater(m, g, 0.9, 1.0, 1e6, 0.98, 0.02)
	if err != nil {
		t.Fatalf("NewIPDAFUpdater: %v", err)
	}

	track := seedTrack(t, 0, 0, 1, 1)
	meas, err := types.NewMeasurement(1.02, 0.98, 1.0, 1, measCov(0.1))
	if err != nil {
		t.Fatalf("NewMeasurement: %v", err)
	}

	if _, err := u.Step(track, []types.Measurement{meas}, 1.0, 1); err != nil {
		t.Fatalf("Step: %v", err)
	}

	last, ok := track.LastPosterior()
	if !ok {
		t.Fatal("expected posterior estimate")
	}
	if last.Existence == nil {
		t.Fatal("expected IPDAF to stamp Existence on the posterior")
	}
	if *last.Existence <= 0 || *last.Existence > 1 {
		t.Errorf("existence = %v, want in (0,1]", *last.Existence)
	}
}

func TestIPDAFUpdater_RepeatedMissesDecayExistence(t *testing.T) {
	m, _ := motion.New(0.25)
	g, _ := gate.New(0.99, 1000)
	u, err := NewIPDAFUpdater(m, g, 0.9, 5.0, 1e4, 0.95, 0.05)
	if err != nil {
		t.Fatalf("NewIPDAFUpdater: %v", err)
	}

	track := seedTrack(t, 0, 0, 0, 0)
	eps0 := 0.9
	track.Estimates[0] = track.Estimates[0].WithExistence(eps0)

	ts := 1.0
	for i := 0; i < 5; i++ {
		if _, err := u.Step(track, nil, ts, i+1); err != nil {
			t.Fatalf("Step %d: %v", i, err)
		}
		ts++
	}

	last, _ := track.LastPosterior()
	if last.Existence == nil {
		t.Fatal("expected Existence to be set")
	}
	if *last.Existence >= eps0 {
		t.Errorf("existence after 5 consecutive misses = %v, want < initial %v", *last.Existence, eps0)
	}
}

func TestExistenceUpdate_EmptyValidationRegionUsesPDPGFloor(t *testing.T) {
	// delta = PD*PG when m=0; verify detectionTerm returns that floor for an
	// empty validation region and the recursion matches the closed form
	// eps+ = (1-delta)*eps- / (1-delta*eps-).
	m, _ := motion.New(0.25)
	g, _ := gate.New(0.99, 1000)
	u, err := NewIPDAFUpdater(m, g, 0.9, 1.0, 1e6, 0.98, 0)
	if err != nil {
		t.Fatalf("NewIPDAFUpdater: %v", err)
	}
	delta := 0.9 * 0.99
	if got := u.detectionTerm(predicted{}, gate.Result{}, nil, 1e-6); got-delta > 1e-12 || got-delta < -1e-12 {
		t.Errorf("detectionTerm with no admitted measurements = %v, want PD*PG = %v", got, delta)
	}
	eps := existenceUpdate(delta, 0.5)
	want := (1 - delta) * 0.5 / (1 - delta*0.5)
	if diff := eps - want; diff > 1e-12 || diff < -1e-12 {
		t.Errorf("existenceUpdate = %v, want %v", eps, want)
	}
}
