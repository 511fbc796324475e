// Package status serves a read-only view of the countdown over HTTP.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/train-countdown/countdown/internal/countdown"
	"github.com/train-countdown/countdown/internal/fetcher"
	"github.com/train-countdown/countdown/internal/metrics"
	"github.com/train-countdown/countdown/internal/ptv"
)

const cycleLogTimeout = 2 * time.Second

// CycleSource reports on the fetch loop
type CycleSource interface {
	LastCycle() (fetcher.CycleResult, bool)
	LastDeparture() (ptv.Departure, bool)
	HasPublished() bool
}

// CycleCounter counts cycles in the persistent fetch-cycle log
type CycleCounter interface {
	CountCycles(ctx context.Context, outcome string) (int, error)
}

// Handler serves health and countdown data
type Handler struct {
	store    *countdown.Store
	cycles   CycleSource
	metrics  *metrics.Collector
	clock    countdown.Clock
	interval time.Duration
	stopID   int
	cycleLog CycleCounter
}

// HandlerOption is a function that configures the handler
type HandlerOption func(*Handler)

// WithClock replaces the system clock
func WithClock(clock countdown.Clock) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithStopID sets the stop reported in the GTFS-Realtime feed
func WithStopID(stopID int) HandlerOption {
	return func(h *Handler) {
		h.stopID = stopID
	}
}

// WithCycleLog adds fetch-cycle log totals to /health
func WithCycleLog(c CycleCounter) HandlerOption {
	return func(h *Handler) {
		h.cycleLog = c
	}
}

// NewHandler creates a new handler. interval is the configured poll interval
// used to judge freshness.
func NewHandler(store *countdown.Store, cycles CycleSource, m *metrics.Collector, interval time.Duration, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:    store,
		cycles:   cycles,
		metrics:  m,
		clock:    countdown.RealClock{},
		interval: interval,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GetHealth handles GET /health
// Returns data freshness, the last fetch cycle and fetch latency statistics
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	snap := h.store.Read()

	response := HealthResponse{
		AgeSeconds: -1,
		Timestamp:  now.UTC(),
	}

	age := time.Duration(-1)
	if last, ok := h.cycles.LastCycle(); ok {
		response.LastCycle = &CycleSummary{
			ID:         last.ID,
			Outcome:    string(last.Outcome),
			Attempts:   last.Attempts,
			FinishedAt: last.FinishedAt.UTC(),
			DurationMs: last.FinishedAt.Sub(last.StartedAt).Milliseconds(),
		}
		if last.Err != nil {
			response.LastCycle.Error = last.Err.Error()
		}
	}

	// before the first publish the anchor is only the start time
	if h.cycles.HasPublished() {
		anchor := snap.Anchor.UTC()
		response.AnchorTime = &anchor
		age = now.Sub(snap.Anchor)
		if age < 0 {
			age = 0
		}
		response.AgeSeconds = int(age / time.Second)
	}

	response.Status = CalculateFreshnessStatus(age, h.interval)
	response.FreshnessScore = CalculateFreshnessScore(age, h.interval)

	latency := h.metrics.Latency()
	response.FetchLatency = LatencySummary{
		Count:    latency.Count,
		MeanMs:   latency.Mean * 1000,
		StdDevMs: latency.StdDev * 1000,
	}
	response.LoggedCycles = h.loggedCycles(r.Context())

	status := http.StatusOK
	if response.Status == FreshnessUnavailable {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// GetCountdown handles GET /api/countdown
// Returns the published value and the live countdown the display shows now
func (h *Handler) GetCountdown(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now()
	snap := h.store.Read()

	response := CountdownResponse{
		Display:    countdown.Text(snap, now),
		AnchorTime: snap.Anchor.UTC(),
	}
	if remaining, ok := snap.Remaining(); ok {
		live, _ := countdown.Live(snap, now)
		response.RemainingSeconds = &remaining
		response.LiveSeconds = &live
	}

	writeJSON(w, http.StatusOK, response)
}

// loggedCycles reads the fetch-cycle log totals, nil when there is no log or
// it cannot be read
func (h *Handler) loggedCycles(ctx context.Context) *CycleLogSummary {
	if h.cycleLog == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, cycleLogTimeout)
	defer cancel()

	total, err := h.cycleLog.CountCycles(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count logged cycles")
		return nil
	}
	published, err := h.cycleLog.CountCycles(ctx, string(fetcher.OutcomePublished))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count logged cycles")
		return nil
	}
	absent, err := h.cycleLog.CountCycles(ctx, string(fetcher.OutcomeAbsent))
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count logged cycles")
		return nil
	}
	return &CycleLogSummary{
		Total:     total,
		Published: published,
		Absent:    absent,
		Failed:    total - published - absent,
	}
}

// Healthz handles GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}
