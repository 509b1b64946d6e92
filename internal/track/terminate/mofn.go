package terminate

import "github.com/oskarba/radartrack/internal/track/types"

// MofNTerminator terminates a track once it has missed
// MaxConsecutiveMisses scans in a row (§4.H). A hit resets the streak.
type MofNTerminator struct {
	MaxConsecutiveMisses int

	streak map[types.TrackIndex]int
}

// NewMofNTerminator validates maxConsecutiveMisses and returns a ready
// terminator.
func NewMofNTerminator(maxConsecutiveMisses int) (*MofNTerminator, error) {
	if maxConsecutiveMisses < 1 {
		return nil, types.NewConfigurationError("max consecutive misses", "must be >= 1")
	}
	return &MofNTerminator{MaxConsecutiveMisses: maxConsecutiveMisses, streak: make(map[types.TrackIndex]int)}, nil
}

// Evaluate reports whether index's consecutive-miss streak has reached
// MaxConsecutiveMisses.
func (m *MofNTerminator) Evaluate(index types.TrackIndex, admitted bool, existence *float64) bool {
	if admitted {
		m.streak[index] = 0
		return false
	}
	m.streak[index]++
	return m.streak[index] >= m.MaxConsecutiveMisses
}

// Forget releases index's miss-streak bookkeeping.
func (m *MofNTerminator) Forget(index types.TrackIndex) {
	delete(m.streak, index)
}
