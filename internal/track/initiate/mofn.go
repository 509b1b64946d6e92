package initiate

import (
	"github.com/oskarba/radartrack/internal/track/assoc"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// candidate is a track under trial, not yet visible in any TrackFile.
type candidate struct {
	track          *types.Track
	bits           []bool // hit/miss history since seeding
	scansSinceSeed int
}

func (c *candidate) hits() int {
	n := 0
	for _, b := range c.bits {
		if b {
			n++
		}
	}
	return n
}

// MofNInitiator promotes a candidate to confirmed as soon as M of its
// scans-since-seeding produced an admitted measurement, and drops it if
// it reaches N scans since seeding without doing so (§4.F). Each
// candidate gets exactly one M-of-N trial: the window never slides past
// a confirm or drop decision.
type MofNInitiator struct {
	Updater        assoc.Updater
	M, N           int
	AllowDoubleUse bool
	SeedPosVar     float64 // initial position variance for a freshly-seeded track
	SeedVelVar     float64 // initial velocity variance for a freshly-seeded track

	candidates []*candidate
}

// NewMofNInitiator validates its parameters and returns a ready initiator.
func NewMofNInitiator(updater assoc.Updater, m, n int, allowDoubleUse bool, seedPosVar, seedVelVar float64) (*MofNInitiator, error) {
	if m < 1 {
		return nil, types.NewConfigurationError("M", "must be >= 1")
	}
	if n < m {
		return nil, types.NewConfigurationError("N", "must be >= M")
	}
	if seedPosVar <= 0 || seedVelVar <= 0 {
		return nil, types.NewConfigurationError("seed variance", "must be positive")
	}
	return &MofNInitiator{Updater: updater, M: m, N: n, AllowDoubleUse: allowDoubleUse, SeedPosVar: seedPosVar, SeedVelVar: seedVelVar}, nil
}

// Step advances every candidate's trial, promotes or drops as their
// windows resolve, and seeds fresh candidates from measurements that no
// confirmed track claimed and no candidate admitted this scan.
func (init *MofNInitiator) Step(measurements []types.Measurement, timestamp float64, scanIndex int, claimed map[int]bool) ([]*types.Track, map[int]bool, error) {
	consumed := make(map[int]bool)
	var promoted []*types.Track
	var survivors []*candidate

	// Unless AllowDoubleUse, candidates see only the measurements no
	// confirmed track claimed; pool[j] is measurements[poolIdx[j]].
	pool, poolIdx := []types.Measurement{}, []int{}
	for i, m := range measurements {
		if init.AllowDoubleUse || !claimed[i] {
			pool, poolIdx = append(pool, m), append(poolIdx, i)
		}
	}

	for _, c := range init.candidates {
		admitted, err := init.Updater.Step(c.track, pool, timestamp, scanIndex)
		if err != nil {
			// A candidate that goes numerically unstable is dropped
			// rather than propagating the error to the whole scan.
			continue
		}
		c.scansSinceSeed++
		c.bits = append(c.bits, len(admitted) > 0)
		for _, i := range admitted {
			consumed[poolIdx[i]] = true
		}

		switch {
		case c.hits() >= init.M:
			promoted = append(promoted, c.track)
		case c.scansSinceSeed >= init.N:
			// dropped: neither promoted nor kept as a survivor.
		default:
			survivors = append(survivors, c)
		}
	}
	init.candidates = survivors

	for i, m := range measurements {
		if claimed[i] || consumed[i] {
			continue
		}
		if m.ScanIndex != scanIndex {
			continue
		}
		seed, err := seedEstimate(m, timestamp, scanIndex, init.SeedPosVar, init.SeedVelVar)
		if err != nil {
			continue
		}
		init.candidates = append(init.candidates, &candidate{
			track:          types.NewTrack(seed),
			bits:           []bool{true},
			scansSinceSeed: 1,
		})
		consumed[i] = true
	}

	return promoted, consumed, nil
}

// seedEstimate builds a zero-velocity posterior estimate at a
// measurement's position, with a covariance wide enough in velocity to
// let the motion model's process noise correct it over the M-of-N
// trial window.
func seedEstimate(m types.Measurement, timestamp float64, scanIndex int, posVar, velVar float64) (types.Estimate, error) {
	mean := mat.NewVecDense(4, []float64{m.North(), 0, m.East(), 0})
	cov := mat.NewDense(4, 4, nil)
	cov.Set(0, 0, posVar)
	cov.Set(1, 1, velVar)
	cov.Set(2, 2, posVar)
	cov.Set(3, 3, velVar)
	return types.Estimate{Timestamp: timestamp, ScanIndex: scanIndex, Mean: mean, Cov: cov, Posterior: true}, nil
}
