package meter

import (
	"sync/atomic"

	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
)

// Snapshot is everything one capture tick hands to the render tick. It is
// published as a whole so a reader never sees fills from two different frames.
type Snapshot struct {
	Fills    [imgproc.MeterCount]float64
	Bounds   imgproc.Box
	Geometry display.Geometry
	Window   display.Window
}

// ActiveIndex returns the highest numbered meter holding a nonzero fill. Meters
// fill up in order so that is the one currently charging.
func (s Snapshot) ActiveIndex() (int, bool) {
	for i := len(s.Fills) - 1; i >= 0; i-- {
		if s.Fills[i] > 0 {
			return i, true
		}
	}
	return 0, false
}

// State is written by the capture tick and read by the render tick.
type State struct {
	snapshot atomic.Pointer[Snapshot]
}

// NewState returns a state holding an empty snapshot.
func NewState() *State {
	s := &State{}
	s.snapshot.Store(&Snapshot{})
	return s
}

// Publish replaces the current snapshot with a copy of `snap`.
func (s *State) Publish(snap Snapshot) {
	s.snapshot.Store(&snap)
}

// Load returns a copy of the latest snapshot.
func (s *State) Load() Snapshot {
	return *s.snapshot.Load()
}
