package order

import (
	"math"
	"time"
)

// Projection is the remaining-time view of an order at a point in time
type Projection struct {
	Active      bool          `json:"active"`
	Remaining   time.Duration `json:"-"`
	RemainingS  float64       `json:"remaining_seconds"`
	MinutesLeft int           `json:"minutes_left"`
	Progress    float64       `json:"progress"`
}

// Project derives remaining preparation time and progress. It depends only
// on the order snapshot and now, so every client computes the same result.
func Project(o *Order, now time.Time) Projection {
	if o == nil || o.Status != StatusPreparing || o.EstimatedTimeMinutes == nil || o.TimeSetAt == nil {
		return Projection{}
	}

	estimated := time.Duration(*o.EstimatedTimeMinutes * float64(time.Minute))
	if estimated <= 0 {
		return Projection{}
	}

	elapsed := now.Sub(*o.TimeSetAt)
	if elapsed < 0 {
		elapsed = 0
	}

	remaining := estimated - elapsed
	if remaining < 0 {
		remaining = 0
	}

	progress := float64(elapsed) / float64(estimated)
	if progress > 1 {
		progress = 1
	}

	return Projection{
		Active:      true,
		Remaining:   remaining,
		RemainingS:  remaining.Seconds(),
		MinutesLeft: int(math.Ceil(remaining.Minutes())),
		Progress:    progress,
	}
}

// Ticking reports whether a view showing o needs its periodic refresh
func Ticking(o *Order) bool {
	return o != nil && o.Status == StatusPreparing
}
