package terminate

import (
	"testing"

	"github.com/oskarba/radartrack/internal/track/types"
)

func trackIndex(i int) types.TrackIndex { return types.TrackIndex(i) }

func TestMofNTerminator_TerminatesAfterConsecutiveMisses(t *testing.T) {
	term, err := NewMofNTerminator(3)
	if err != nil {
		t.Fatalf("NewMofNTerminator: %v", err)
	}

	idx := trackIndex(1)
	if term.Evaluate(idx, false, nil) {
		t.Fatal("should not terminate after 1 miss")
	}
	if term.Evaluate(idx, false, nil) {
		t.Fatal("should not terminate after 2 misses")
	}
	if !term.Evaluate(idx, false, nil) {
		t.Fatal("should terminate after 3 consecutive misses")
	}
}

func TestMofNTerminator_HitResetsStreak(t *testing.T) {
	term, err := NewMofNTerminator(2)
	if err != nil {
		t.Fatalf("NewMofNTerminator: %v", err)
	}

	idx := trackIndex(1)
	term.Evaluate(idx, false, nil)
	if term.Evaluate(idx, true, nil) {
		t.Fatal("a hit must not terminate")
	}
	if term.Evaluate(idx, false, nil) {
		t.Fatal("streak should have reset after the hit")
	}
}

func TestMofNTerminator_Forget(t *testing.T) {
	term, _ := NewMofNTerminator(2)
	idx := trackIndex(1)
	term.Evaluate(idx, false, nil)
	term.Forget(idx)
	if _, ok := term.streak[idx]; ok {
		t.Error("expected streak bookkeeping to be cleared after Forget")
	}
}

func TestIPDATerminator_TerminatesBelowThreshold(t *testing.T) {
	term, err := NewIPDATerminator(0.1)
	if err != nil {
		t.Fatalf("NewIPDATerminator: %v", err)
	}

	above := 0.5
	if term.Evaluate(trackIndex(1), true, &above) {
		t.Error("should not terminate with existence above threshold")
	}
	below := 0.05
	if !term.Evaluate(trackIndex(1), true, &below) {
		t.Error("should terminate with existence at or below threshold")
	}
}

func TestIPDATerminator_NeverTerminatesWithoutExistence(t *testing.T) {
	term, _ := NewIPDATerminator(0.1)
	if term.Evaluate(trackIndex(1), false, nil) {
		t.Error("should never terminate a track with no existence probability")
	}
}
