package terminate

import "github.com/oskarba/radartrack/internal/track/types"

// IPDATerminator terminates a track once its IPDA existence probability
// falls to or below Threshold (§4.H). It carries no per-track state —
// the existence recursion itself already encodes persistence.
type IPDATerminator struct {
	Threshold float64
}

// NewIPDATerminator validates threshold and returns a ready terminator.
func NewIPDATerminator(threshold float64) (*IPDATerminator, error) {
	if threshold < 0 || threshold >= 1 {
		return nil, types.NewConfigurationError("threshold", "must be in [0,1)")
	}
	return &IPDATerminator{Threshold: threshold}, nil
}

// Evaluate reports whether existence has fallen to or below Threshold.
// A track with no existence probability (not produced by an IPDA-family
// updater) is never terminated by this policy.
func (it *IPDATerminator) Evaluate(index types.TrackIndex, admitted bool, existence *float64) bool {
	if existence == nil {
		return false
	}
	return *existence <= it.Threshold
}

// Forget is a no-op: IPDATerminator keeps no per-track bookkeeping.
func (it *IPDATerminator) Forget(index types.TrackIndex) {}
