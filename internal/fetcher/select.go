package fetcher

import (
	"time"

	"github.com/train-countdown/countdown/internal/ptv"
)

// Strategy decides which matching departure is "next"
type Strategy string

const (
	// SelectFirst keeps the first matching departure in service order
	SelectFirst Strategy = "first"
	// SelectEarliest picks the matching departure with the smallest departure time
	SelectEarliest Strategy = "earliest"
)

// Select returns the next departure in the given direction along with its
// departure time. Records without any departure time are skipped.
func Select(departures []ptv.Departure, directionID int, strategy Strategy) (ptv.Departure, time.Time, bool) {
	var (
		best     ptv.Departure
		bestTime time.Time
		found    bool
	)

	for _, d := range departures {
		if d.DirectionID != directionID {
			continue
		}
		when, ok := d.DepartureTime()
		if !ok {
			continue
		}

		if strategy != SelectEarliest {
			return d, when, true
		}
		if !found || when.Before(bestTime) {
			best, bestTime, found = d, when, true
		}
	}

	return best, bestTime, found
}
