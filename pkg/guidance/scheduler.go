package guidance

import "time"

// AutoCaptureDelay is how long guidance must stay valid, uninterrupted,
// before capture fires. Any non-valid tick restarts the hold.
const AutoCaptureDelay = 1500 * time.Millisecond

// SchedulerState is the hold timer. The zero value means no valid streak
// is in progress.
type SchedulerState struct {
	ValidSince time.Time
}

// Tick advances the hold timer for one guidance outcome and reports
// whether auto-capture should fire. Firing clears the state, so a trigger
// happens at most once per continuous valid streak.
func Tick(state SchedulerState, status Status, now time.Time) (SchedulerState, bool) {
	return TickWithDelay(state, status, now, AutoCaptureDelay)
}

// TickWithDelay is Tick with a caller-supplied hold duration.
func TickWithDelay(state SchedulerState, status Status, now time.Time, delay time.Duration) (SchedulerState, bool) {
	if status != StatusValid {
		return SchedulerState{}, false
	}

	if state.ValidSince.IsZero() {
		return SchedulerState{ValidSince: now}, false
	}

	if now.Sub(state.ValidSince) >= delay {
		return SchedulerState{}, true
	}

	return state, false
}
