package types

import "sync"

// TrackFile is the mapping from track index to Track, owned exclusively
// by the manager (see internal/track/manager). It assigns monotonically
// increasing, never-reused indices and guards its map with a mutex so
// read-only collaborators (diagnostics, persistence, visualisation) can
// safely look up and list tracks from a goroutine other than the one
// driving Manager.Step. The Tracks it holds, and their Estimates, are not
// guarded by that mutex — see §5 of the design notes.
type TrackFile struct {
	mu        sync.RWMutex
	tracks    map[TrackIndex]*Track
	nextIndex TrackIndex
}

// NewTrackFile returns an empty TrackFile.
func NewTrackFile() *TrackFile {
	return &TrackFile{tracks: make(map[TrackIndex]*Track)}
}

// Insert assigns track the next monotonic index, fixes up the TrackIndex
// field of every estimate it already carries (a freshly-promoted
// tentative track arrives with estimates stamped TrackIndex 0), and
// stores it in the file.
func (f *TrackFile) Insert(track *Track) TrackIndex {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.nextIndex
	f.nextIndex++
	track.Index = idx
	for i := range track.Estimates {
		track.Estimates[i].TrackIndex = idx
	}
	f.tracks[idx] = track
	return idx
}

// Get returns the track with the given index, or false if absent.
func (f *TrackFile) Get(idx TrackIndex) (*Track, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.tracks[idx]
	return t, ok
}

// Terminate marks a track Terminated in place. Its history is kept; the
// TrackFile never deletes entries (see types.Status).
func (f *TrackFile) Terminate(idx TrackIndex) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tracks[idx]; ok {
		t.Status = StatusTerminated
	}
}

// Confirmed returns the tracks currently in StatusConfirmed, in index
// order (ascending), so iteration order never leaks into downstream
// association/weighting math.
func (f *TrackFile) Confirmed() []*Track {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Track, 0, len(f.tracks))
	for _, t := range f.tracks {
		if t.Status == StatusConfirmed {
			out = append(out, t)
		}
	}
	sortByIndex(out)
	return out
}

// All returns every track in the file (confirmed and terminated alike),
// in index order.
func (f *TrackFile) All() []*Track {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*Track, 0, len(f.tracks))
	for _, t := range f.tracks {
		out = append(out, t)
	}
	sortByIndex(out)
	return out
}

// Len reports the number of tracks (confirmed + terminated) in the file.
func (f *TrackFile) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tracks)
}

func sortByIndex(tracks []*Track) {
	// Small N (tens to low hundreds of tracks per scenario) — simple
	// insertion sort keeps this allocation-free and avoids pulling in
	// sort.Slice's closure for a hot-ish path.
	for i := 1; i < len(tracks); i++ {
		for j := i; j > 0 && tracks[j].Index < tracks[j-1].Index; j-- {
			tracks[j], tracks[j-1] = tracks[j-1], tracks[j]
		}
	}
}
