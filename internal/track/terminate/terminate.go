// Package terminate implements track termination (§4.H): deciding, scan
// by scan, whether a confirmed track has stopped corresponding to a real
// target and should be marked StatusTerminated in its TrackFile.
package terminate

import "github.com/oskarba/radartrack/internal/track/types"

// Terminator is the common contract for a termination policy. Evaluate
// is called once per confirmed track per scan, after that track's
// Updater.Step has run, and reports whether the track should be
// terminated now. admitted is whether the track's gate claimed at least
// one measurement this scan; existence is the track's current IPDA
// existence probability, or nil for a track whose updater doesn't
// produce one. Forget releases any per-track bookkeeping a stateful
// policy keeps; the manager calls it when it terminates a track.
type Terminator interface {
	Evaluate(index types.TrackIndex, admitted bool, existence *float64) bool
	Forget(index types.TrackIndex)
}
