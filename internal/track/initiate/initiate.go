// Package initiate implements track initiation (§4.F/§4.G): turning
// unclaimed measurements into candidate tracks, and promoting candidates
// that show enough evidence of being a real target into confirmed
// tracks that a manager hands off to its Updater.
package initiate

import (
	"github.com/oskarba/radartrack/internal/track/types"
)

// Initiator is the common contract for track initiation. Step consumes
// one scan's measurements, advances every candidate track's internal
// filter, and returns the candidates that graduated to confirmed tracks
// this scan plus the indices of measurements the candidates (graduated
// or not) consumed. Manager.Step does not use the consumed set.
//
// claimed marks measurement indices that confirmed tracks' gates admitted
// this scan (the manager fills it from each track's Updater.Step). An
// initiator never seeds a new candidate from a claimed measurement, nor
// from one a candidate admitted this scan; its AllowDoubleUse decides
// whether claimed measurements may still update existing candidates.
type Initiator interface {
	Step(measurements []types.Measurement, timestamp float64, scanIndex int, claimed map[int]bool) (promoted []*types.Track, consumed map[int]bool, err error)
}
