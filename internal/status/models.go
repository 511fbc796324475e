package status

import "time"

// Freshness status values
const (
	FreshnessFresh       = "fresh"       // younger than two poll intervals
	FreshnessStale       = "stale"       // up to ten poll intervals
	FreshnessUnavailable = "unavailable" // older, or nothing fetched yet
)

// CalculateFreshnessStatus returns the freshness status of data that is age
// old when new data is expected every interval. A negative age means no data.
func CalculateFreshnessStatus(age, interval time.Duration) string {
	if age < 0 {
		return FreshnessUnavailable
	}
	if age < 2*interval {
		return FreshnessFresh
	}
	if age < 10*interval {
		return FreshnessStale
	}
	return FreshnessUnavailable
}

// CalculateFreshnessScore returns a 0-100 score based on data age
func CalculateFreshnessScore(age, interval time.Duration) int {
	if age < 0 {
		return 0
	}
	if age <= interval {
		return 100
	}
	limit := 10 * interval
	if age >= limit {
		return 0
	}
	// Linear decay from 100 at one interval to 0 at ten
	return 100 - int((age-interval)*100/(limit-interval))
}

// CycleSummary is the last finished fetch cycle
type CycleSummary struct {
	ID         string    `json:"id"`
	Outcome    string    `json:"outcome"`
	Attempts   int       `json:"attempts"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// LatencySummary is the running fetch latency in milliseconds
type LatencySummary struct {
	Count    int     `json:"count"`
	MeanMs   float64 `json:"mean_ms"`
	StdDevMs float64 `json:"stddev_ms"`
}

// CycleLogSummary counts the cycles kept in the fetch-cycle log
type CycleLogSummary struct {
	Total     int `json:"total"`
	Published int `json:"published"`
	Absent    int `json:"absent"`
	Failed    int `json:"failed"`
}

// HealthResponse is the JSON response for GET /health
type HealthResponse struct {
	Status         string           `json:"status"`
	FreshnessScore int              `json:"freshness_score"`
	AnchorTime     *time.Time       `json:"anchor_time"`
	AgeSeconds     int              `json:"age_seconds"`
	LastCycle      *CycleSummary    `json:"last_cycle"`
	FetchLatency   LatencySummary   `json:"fetch_latency"`
	LoggedCycles   *CycleLogSummary `json:"logged_cycles,omitempty"`
	Timestamp      time.Time        `json:"timestamp"`
}

// CountdownResponse is the JSON response for GET /api/countdown
type CountdownResponse struct {
	RemainingSeconds *int      `json:"remaining_seconds"`
	LiveSeconds      *int      `json:"live_seconds"`
	Display          string    `json:"display"`
	AnchorTime       time.Time `json:"anchor_time"`
}

// ErrorResponse is the JSON error response structure
type ErrorResponse struct {
	Error string `json:"error"`
}
