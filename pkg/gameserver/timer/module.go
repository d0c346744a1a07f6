package timer

import (
	"time"
)

// A Deadline is an absolute point in time at which something expires. It
// never fires on its own: callers compare it against the current time on
// every tick, so a late check still observes the expiry exactly once as
// long as the caller clears or re-arms it when acting on it.
type Deadline struct {
	at time.Time
}

// At returns a deadline that expires at t.
func At(t time.Time) Deadline {
	return Deadline{at: t}
}

// In returns a deadline that expires d after now.
func In(now time.Time, d time.Duration) Deadline {
	return Deadline{at: now.Add(d)}
}

// Armed reports whether the deadline has been set.
func (d Deadline) Armed() bool {
	return !d.at.IsZero()
}

// Passed reports whether an armed deadline has expired at now.
func (d Deadline) Passed(now time.Time) bool {
	return d.Armed() && !now.Before(d.at)
}

// TimeLeft returns the duration until expiry, or zero if the deadline is
// unarmed or has already passed.
func (d Deadline) TimeLeft(now time.Time) time.Duration {
	if !d.Armed() {
		return 0
	}

	left := d.at.Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (d Deadline) Time() time.Time {
	return d.at
}

func (d *Deadline) Clear() {
	d.at = time.Time{}
}
