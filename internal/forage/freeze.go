package forage

import (
	"errors"
	"time"
)

// Freeze timing.
const (
	// BaseWait is the minimum wait when the freeze starts outside a hot zone.
	BaseWait = 3 * time.Second
	// HotWait is the minimum wait when the freeze starts in a hot zone.
	HotWait = 6 * time.Second
	// EarlyReleasePenalty is added to the required wait for every release
	// attempt made before the threshold.
	EarlyReleasePenalty = 2 * time.Second

	// Freeze onset jitter: interval × U[JitterMin, JitterMax).
	JitterMin = 0.7
	JitterMax = 1.0
)

// ErrFreezeActive is returned when a freeze is triggered while another
// episode is still active.
var ErrFreezeActive = errors.New("forage: freeze episode already active")

// FreezePhase is the state of the freeze/release state machine.
type FreezePhase int

const (
	FreezeRunning    FreezePhase = iota // no episode
	FreezeTriggered                     // onset; collapses into Waiting immediately
	FreezeWaiting                       // elapsed < required
	FreezeReleasable                    // elapsed >= required
)

func (p FreezePhase) String() string {
	switch p {
	case FreezeRunning:
		return "running"
	case FreezeTriggered:
		return "triggered"
	case FreezeWaiting:
		return "waiting"
	case FreezeReleasable:
		return "releasable"
	default:
		return "unknown"
	}
}

// FreezeEpisode is the transient state of one forced pause.
type FreezeEpisode struct {
	Start    time.Time
	BaseWait time.Duration // fixed at onset: HotWait or BaseWait
	Penalty  time.Duration // always a multiple of EarlyReleasePenalty
	Attempts int           // release presses so far, early or not
	Hot      bool
}

// Required returns the current wait threshold, base wait plus penalties.
func (e *FreezeEpisode) Required() time.Duration {
	return e.BaseWait + e.Penalty
}

// Elapsed returns the time since onset.
func (e *FreezeEpisode) Elapsed(now time.Time) time.Duration {
	return now.Sub(e.Start)
}

// ReleaseOutcome classifies a release attempt.
type ReleaseOutcome int

const (
	ReleaseIgnored   ReleaseOutcome = iota // no active episode
	ReleasePenalized                       // too early; penalty added
	ReleaseAccepted                        // threshold reached; episode ended
)

// ReleaseResult is returned by Freeze.Attempt. For an accepted release it
// describes the finished episode.
type ReleaseResult struct {
	Outcome  ReleaseOutcome
	Duration time.Duration
	Penalty  time.Duration
	Attempts int
	Hot      bool
}

// Freeze holds at most one active freeze episode.
type Freeze struct {
	episode *FreezeEpisode
}

// Active reports whether a freeze episode is in progress.
func (f *Freeze) Active() bool {
	return f.episode != nil
}

// Episode returns the active episode, or nil.
func (f *Freeze) Episode() *FreezeEpisode {
	return f.episode
}

// Begin starts an episode. The required wait is chosen here from the
// player's zone and never changes afterwards except through penalties.
func (f *Freeze) Begin(now time.Time, hot bool) error {
	if f.episode != nil {
		return ErrFreezeActive
	}
	wait := BaseWait
	if hot {
		wait = HotWait
	}
	f.episode = &FreezeEpisode{
		Start:    now,
		BaseWait: wait,
		Hot:      hot,
	}
	return nil
}

// Phase returns the current phase. Triggered is only observable on the onset
// tick itself. Releasable is computed from the clock; no transition is
// recorded when the threshold passes.
func (f *Freeze) Phase(now time.Time) FreezePhase {
	if f.episode == nil {
		return FreezeRunning
	}
	elapsed := f.episode.Elapsed(now)
	if elapsed <= 0 {
		return FreezeTriggered
	}
	if elapsed >= f.episode.Required() {
		return FreezeReleasable
	}
	return FreezeWaiting
}

// Remaining returns the time left before a release will be accepted.
func (f *Freeze) Remaining(now time.Time) time.Duration {
	if f.episode == nil {
		return 0
	}
	return max(0, f.episode.Required()-f.episode.Elapsed(now))
}

// Attempt handles one release press. An early press adds
// EarlyReleasePenalty to the required wait; a press at or after the
// threshold ends the episode.
func (f *Freeze) Attempt(now time.Time) ReleaseResult {
	e := f.episode
	if e == nil {
		return ReleaseResult{Outcome: ReleaseIgnored}
	}
	e.Attempts++
	if e.Elapsed(now) < e.Required() {
		e.Penalty += EarlyReleasePenalty
		return ReleaseResult{
			Outcome:  ReleasePenalized,
			Penalty:  e.Penalty,
			Attempts: e.Attempts,
			Hot:      e.Hot,
		}
	}
	f.episode = nil
	return ReleaseResult{
		Outcome:  ReleaseAccepted,
		Duration: e.Elapsed(now),
		Penalty:  e.Penalty,
		Attempts: e.Attempts,
		Hot:      e.Hot,
	}
}

// nextFreezeDelay draws the delay until the next freeze onset.
func nextFreezeDelay(interval time.Duration, rng Source) time.Duration {
	jitter := JitterMin + (JitterMax-JitterMin)*rng.Float64()
	return time.Duration(float64(interval) * jitter)
}
