// Package manager implements the track manager (§4.I): the state
// machine that drives one scan's worth of measurements through the
// kinematic update of confirmed tracks, their termination evaluation,
// and then the initiation of new candidates. Initiation runs last, after
// the update and termination stages, not before them.
package manager

import (
	"sync"

	"github.com/google/uuid"
	"github.com/oskarba/radartrack/internal/track/assoc"
	"github.com/oskarba/radartrack/internal/track/initiate"
	"github.com/oskarba/radartrack/internal/track/terminate"
	"github.com/oskarba/radartrack/internal/track/types"
	"github.com/oskarba/radartrack/internal/tracklog"
)

// Config collects the manager's own policy knobs, independent of the
// collaborators it's built from.
type Config struct {
	// AllowDoubleUse, when true (the default — see
	// internal/trackconfig), lets a measurement already claimed by a
	// confirmed track's gate also feed a tentative track's update this
	// same scan; a claimed measurement never seeds a new tentative track.
	// Manager.Step does not read this field: the policy is applied by the
	// initiator's own AllowDoubleUse flag, from the claimed set Step
	// passes it.
	AllowDoubleUse bool
}

// Manager owns a TrackFile and drives it, one scan at a time: update the
// filters of existing confirmed tracks, evaluate their termination, then
// run initiation. Step must only be called from one goroutine at a time —
// it is the single writer. The TrackFile's own mutex guards its index
// map; a track's Estimates are appended by Step without a lock, so
// reading them while Step runs is not synchronised.
type Manager struct {
	RunID uuid.UUID

	mu        sync.Mutex
	file      *types.TrackFile
	updater   assoc.Updater
	initiator initiate.Initiator
	term      terminate.Terminator
	cfg       Config
}

// New returns a Manager wired to the given updater (drives confirmed
// tracks), initiator (produces new confirmed tracks) and terminator
// (decides when a confirmed track dies).
func New(updater assoc.Updater, initiator initiate.Initiator, term terminate.Terminator, cfg Config) *Manager {
	return &Manager{
		RunID:     uuid.New(),
		file:      types.NewTrackFile(),
		updater:   updater,
		initiator: initiator,
		term:      term,
		cfg:       cfg,
	}
}

// TrackFile returns the manager's TrackFile. Its index map is safe to
// read concurrently with Step; the tracks' Estimates slices are not.
func (m *Manager) TrackFile() *types.TrackFile {
	return m.file
}

// Step processes one scan: every confirmed track is predicted, gated
// and updated, then evaluated for termination; initiation then runs
// with the set of measurements confirmed tracks claimed (never seeding
// from those), promoting new tracks into the TrackFile.
func (m *Manager) Step(measurements []types.Measurement, timestamp float64, scanIndex int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	confirmed := m.file.Confirmed()
	claimed := make(map[int]bool)

	for _, track := range confirmed {
		admitted, err := m.updater.Step(track, measurements, timestamp, scanIndex)
		if err != nil {
			tracklog.Logf("track %d: update failed: %v", track.Index, err)
			if m.term.Evaluate(track.Index, false, nil) {
				m.terminate(track.Index)
			}
			continue
		}
		for _, i := range admitted {
			claimed[i] = true
		}

		last, _ := track.LastPosterior()
		if m.term.Evaluate(track.Index, len(admitted) > 0, last.Existence) {
			m.terminate(track.Index)
		}
	}

	promoted, _, err := m.initiator.Step(measurements, timestamp, scanIndex, claimed)
	if err != nil {
		return err
	}
	for _, track := range promoted {
		idx := m.file.Insert(track)
		tracklog.Logf("track %d: promoted to confirmed", idx)
	}

	return nil
}

func (m *Manager) terminate(index types.TrackIndex) {
	m.file.Terminate(index)
	m.term.Forget(index)
	tracklog.Logf("track %d: terminated", index)
}
