// Package assoc implements the probabilistic-data-association family of
// track updaters: PDAF (§4.D) and its existence-aware variant IPDAF
// (§4.E). Both share the predict/gate/weight/update skeleton in
// common.go; PDAFUpdater and IPDAFUpdater differ only in how they derive
// the association weights beta and, for IPDAF, the existence update.
package assoc

import (
	"github.com/oskarba/radartrack/internal/track/types"
)

// Updater is the common contract for a one-step track filter (§4.C′).
// Step predicts, gates and updates track against measurements, appending
// exactly one posterior Estimate; it returns the measurement indices
// that fell inside the track's validation region this scan (the gate's
// V — empty means "miss"). Peek does the same predict+gate without
// mutating track, letting callers (initiators) check whether a
// measurement would be claimed by an existing track's gate this scan,
// without disturbing that track's own filter state.
type Updater interface {
	Step(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int) (admitted []int, err error)
	Peek(track *types.Track, measurements []types.Measurement, timestamp float64, scanIndex int) (admitted []int, err error)
}
