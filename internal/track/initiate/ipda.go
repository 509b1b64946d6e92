package initiate

import (
	"github.com/oskarba/radartrack/internal/track/assoc"
	"github.com/oskarba/radartrack/internal/track/types"
	"gonum.org/v1/gonum/mat"
)

// IPDAInitiator promotes or drops candidates based on their IPDAF
// existence probability (§4.G) rather than a fixed hit count: a
// candidate is promoted once its existence crosses PromoteThreshold and
// dropped once it falls to or below DropThreshold, with no bound on how
// many scans that takes.
type IPDAInitiator struct {
	Updater          *assoc.IPDAFUpdater
	PromoteThreshold float64
	DropThreshold    float64
	SeedExistence    float64
	AllowDoubleUse   bool
	SeedPosVar       float64
	SeedVelVar       float64

	candidates []*types.Track
}

// NewIPDAInitiator validates its parameters and returns a ready initiator.
func NewIPDAInitiator(updater *assoc.IPDAFUpdater, promoteThreshold, dropThreshold, seedExistence float64, allowDoubleUse bool, seedPosVar, seedVelVar float64) (*IPDAInitiator, error) {
	if promoteThreshold <= 0 || promoteThreshold > 1 {
		return nil, types.NewConfigurationError("promote threshold", "must be in (0,1]")
	}
	if dropThreshold < 0 || dropThreshold >= promoteThreshold {
		return nil, types.NewConfigurationError("drop threshold", "must be in [0, promote threshold)")
	}
	if seedExistence <= dropThreshold || seedExistence >= promoteThreshold {
		return nil, types.NewConfigurationError("seed existence", "must lie strictly between the drop and promote thresholds")
	}
	if seedPosVar <= 0 || seedVelVar <= 0 {
		return nil, types.NewConfigurationError("seed variance", "must be positive")
	}
	return &IPDAInitiator{
		Updater:          updater,
		PromoteThreshold: promoteThreshold,
		DropThreshold:    dropThreshold,
		SeedExistence:    seedExistence,
		AllowDoubleUse:   allowDoubleUse,
		SeedPosVar:       seedPosVar,
		SeedVelVar:       seedVelVar,
	}, nil
}

// Step advances every candidate's existence recursion, promotes or drops
// as thresholds are crossed, and seeds fresh candidates from measurements
// that no confirmed track claimed and no candidate admitted this scan.
func (init *IPDAInitiator) Step(measurements []types.Measurement, timestamp float64, scanIndex int, claimed map[int]bool) ([]*types.Track, map[int]bool, error) {
	consumed := make(map[int]bool)
	var promoted []*types.Track
	var survivors []*types.Track

	// Unless AllowDoubleUse, candidates see only the measurements no
	// confirmed track claimed; pool[j] is measurements[poolIdx[j]].
	pool, poolIdx := []types.Measurement{}, []int{}
	for i, m := range measurements {
		if init.AllowDoubleUse || !claimed[i] {
			pool, poolIdx = append(pool, m), append(poolIdx, i)
		}
	}

	for _, track := range init.candidates {
		admitted, err := init.Updater.Step(track, pool, timestamp, scanIndex)
		if err != nil {
			continue
		}
		for _, i := range admitted {
			consumed[poolIdx[i]] = true
		}

		last, _ := track.LastPosterior()
		existence := 0.0
		if last.Existence != nil {
			existence = *last.Existence
		}

		switch {
		case existence >= init.PromoteThreshold:
			promoted = append(promoted, track)
		case existence <= init.DropThreshold:
			// dropped
		default:
			survivors = append(survivors, track)
		}
	}
	init.candidates = survivors

	for i, m := range measurements {
		if claimed[i] || consumed[i] {
			continue
		}
		seed := seedExistenceEstimate(m, timestamp, scanIndex, init.SeedPosVar, init.SeedVelVar, init.SeedExistence)
		init.candidates = append(init.candidates, types.NewTrack(seed))
		consumed[i] = true
	}

	return promoted, consumed, nil
}

func seedExistenceEstimate(m types.Measurement, timestamp float64, scanIndex int, posVar, velVar, existence float64) types.Estimate {
	mean := mat.NewVecDense(4, []float64{m.North(), 0, m.East(), 0})
	cov := mat.NewDense(4, 4, nil)
	cov.Set(0, 0, posVar)
	cov.Set(1, 1, velVar)
	cov.Set(2, 2, posVar)
	cov.Set(3, 3, velVar)
	return types.Estimate{Timestamp: timestamp, ScanIndex: scanIndex, Mean: mean, Cov: cov, Posterior: true}.WithExistence(existence)
}
