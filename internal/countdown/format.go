package countdown

import (
	"fmt"
	"time"
)

// Placeholder is shown when no departure is known
const Placeholder = "--:--"

// Live extrapolates the snapshot to now. Elapsed time is truncated to whole
// seconds and never negative, so the result only decreases as now advances.
func Live(s Snapshot, now time.Time) (int, bool) {
	remaining, ok := s.Remaining()
	if !ok {
		return 0, false
	}

	elapsed := int(now.Sub(s.Anchor) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	live := remaining - elapsed
	if live < 0 {
		live = 0
	}
	return live, true
}

// Format renders seconds as MM:SS. Minutes are not wrapped into hours.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Text returns what the display should show for a snapshot at now
func Text(s Snapshot, now time.Time) string {
	live, ok := Live(s, now)
	if !ok {
		return Placeholder
	}
	return Format(live)
}
