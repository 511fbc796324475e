// Package fetcher keeps the countdown store fresh from the timetable service.
package fetcher

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/train-countdown/countdown/internal/countdown"
	"github.com/train-countdown/countdown/internal/db"
	"github.com/train-countdown/countdown/internal/metrics"
	"github.com/train-countdown/countdown/internal/ptv"
)

// recordTimeout bounds writing a finished cycle to the log, also during shutdown
const recordTimeout = 5 * time.Second

// Timetable is the part of the timetable service the fetcher needs
type Timetable interface {
	Departures(ctx context.Context, q ptv.DeparturesQuery) ([]ptv.Departure, error)
}

// Recorder persists finished cycles for diagnostics
type Recorder interface {
	RecordCycle(ctx context.Context, r db.CycleRecord) error
}

// Outcome classifies how a fetch cycle ended
type Outcome string

const (
	OutcomePublished Outcome = "published"
	OutcomeAbsent    Outcome = "absent"
	OutcomeTransient Outcome = "transient"
	OutcomeService   Outcome = "service"
	OutcomeTimeout   Outcome = "timeout"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeError     Outcome = "error"
)

// RetryPolicy governs retries of transient failures within one cycle
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Config holds what the fetcher asks for and how often
type Config struct {
	StopID      int
	DirectionID int
	RouteType   ptv.RouteType
	MaxResults  int
	Strategy    Strategy

	Interval     time.Duration
	CycleTimeout time.Duration
	Retry        RetryPolicy
}

// CycleResult describes one finished fetch cycle
type CycleResult struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Attempts   int
	Outcome    Outcome
	Remaining  int
	Departure  *ptv.Departure
	Err        error
}

// Fetcher periodically publishes the next departure into a countdown store
type Fetcher struct {
	timetable Timetable
	store     *countdown.Store
	cfg       Config

	clock    countdown.Clock
	metrics  *metrics.Collector
	recorder Recorder
	newTimer func() backoff.Timer

	running   atomic.Bool
	published atomic.Bool
	wg        sync.WaitGroup

	mu        sync.RWMutex
	last      *CycleResult
	departure *ptv.Departure
}

// Option is a function that configures the fetcher
type Option func(*Fetcher)

// WithClock replaces the system clock
func WithClock(clock countdown.Clock) Option {
	return func(f *Fetcher) {
		f.clock = clock
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// WithRecorder sets where finished cycles are logged
func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) {
		f.recorder = r
	}
}

// WithRetryTimer replaces the timer used to wait between attempts
func WithRetryTimer(newTimer func() backoff.Timer) Option {
	return func(f *Fetcher) {
		f.newTimer = newTimer
	}
}

// New creates a new fetcher
func New(timetable Timetable, store *countdown.Store, cfg Config, opts ...Option) *Fetcher {
	f := &Fetcher{
		timetable: timetable,
		store:     store,
		cfg:       cfg,
		clock:     countdown.RealClock{},
		newTimer:  func() backoff.Timer { return nil }, // nil selects backoff's default timer
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run starts a cycle immediately and then once per interval, measured from
// cycle start to cycle start. A tick that arrives while the previous cycle is
// still retrying is skipped. Run returns once ctx is done and the in-flight
// cycle has finished.
func (f *Fetcher) Run(ctx context.Context) error {
	log.Info().
		Int("stop", f.cfg.StopID).
		Int("direction", f.cfg.DirectionID).
		Dur("interval", f.cfg.Interval).
		Int("max_attempts", f.cfg.Retry.MaxAttempts).
		Dur("retry_delay", f.cfg.Retry.Delay).
		Msg("Starting fetch loop")

	f.trigger(ctx)

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.trigger(ctx)
		case <-ctx.Done():
			f.wg.Wait()
			log.Info().Msg("Fetch loop stopped")
			return nil
		}
	}
}

// trigger launches a cycle unless one is already running
func (f *Fetcher) trigger(ctx context.Context) bool {
	if !f.running.CompareAndSwap(false, true) {
		log.Warn().Msg("Previous fetch cycle still running, skipping tick")
		f.metrics.RecordSkip()
		return false
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.running.Store(false)
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Fetch cycle panicked")
			}
		}()
		f.Cycle(ctx)
	}()
	return true
}

// Cycle performs one fetch cycle. Failures are logged and reported in the
// result; they never leave the store in a partially updated state.
func (f *Fetcher) Cycle(ctx context.Context) CycleResult {
	res := CycleResult{
		ID:        uuid.NewString(),
		StartedAt: f.clock.Now(),
	}
	logger := log.With().Str("cycle", res.ID[:8]).Logger()

	cycleCtx := ctx
	if f.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, f.cfg.CycleTimeout)
		defer cancel()
	}

	departures, err := f.fetch(cycleCtx, &res, logger)
	if err != nil {
		res.Err = err
		res.Outcome = classify(err)
		logger.Error().Err(err).Str("outcome", string(res.Outcome)).Int("attempts", res.Attempts).Msg("Fetch cycle failed, keeping previous countdown")
	} else {
		f.publish(departures, &res, logger)
	}

	res.FinishedAt = f.clock.Now()
	f.finish(ctx, res, logger)
	return res
}

// HasPublished reports whether any cycle has written to the store
func (f *Fetcher) HasPublished() bool {
	return f.published.Load()
}

// LastDeparture returns the departure behind the published countdown. It is
// cleared when a cycle finds no departure and kept across failed cycles.
func (f *Fetcher) LastDeparture() (ptv.Departure, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.departure == nil {
		return ptv.Departure{}, false
	}
	return *f.departure, true
}

// LastCycle returns the most recently finished cycle
func (f *Fetcher) LastCycle() (CycleResult, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.last == nil {
		return CycleResult{}, false
	}
	return *f.last, true
}

func (f *Fetcher) fetch(ctx context.Context, res *CycleResult, logger zerolog.Logger) ([]ptv.Departure, error) {
	query := ptv.DeparturesQuery{
		StopID:     f.cfg.StopID,
		RouteType:  f.cfg.RouteType,
		MaxResults: f.cfg.MaxResults,
	}

	maxAttempts := f.cfg.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(f.cfg.Retry.Delay), uint64(maxAttempts-1)),
		ctx,
	)

	operation := func() ([]ptv.Departure, error) {
		res.Attempts++
		started := time.Now()
		departures, err := f.timetable.Departures(ctx, query)
		f.metrics.RecordAttempt(attemptResult(err), time.Since(started))

		if err != nil && !ptv.IsTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return departures, err
	}

	notify := func(err error, next time.Duration) {
		logger.Warn().Err(err).Int("attempt", res.Attempts).Dur("retry_in", next).Msg("Connection error, retrying")
	}

	departures, err := backoff.RetryNotifyWithTimerAndData(operation, b, notify, f.newTimer())
	if err != nil && ptv.IsTransient(err) {
		logger.Error().Int("attempts", res.Attempts).Msg("Max retries exceeded")
	}
	return departures, err
}

func (f *Fetcher) publish(departures []ptv.Departure, res *CycleResult, logger zerolog.Logger) {
	now := f.clock.Now()

	dep, when, ok := Select(departures, f.cfg.DirectionID, f.cfg.Strategy)
	if !ok {
		f.mu.Lock()
		f.store.PublishAbsent(now)
		f.departure = nil
		f.mu.Unlock()
		f.published.Store(true)
		res.Outcome = OutcomeAbsent
		logger.Warn().Int("direction", f.cfg.DirectionID).Int("departures", len(departures)).Msg("No upcoming departures found for direction")
		return
	}

	remaining := int(when.Sub(now) / time.Second)
	if remaining < 0 {
		remaining = 0
	}
	f.mu.Lock()
	f.store.Publish(remaining, now)
	f.departure = &dep
	f.mu.Unlock()
	f.published.Store(true)

	res.Outcome = OutcomePublished
	res.Remaining = remaining
	res.Departure = &dep

	logger.Info().Int("remaining", remaining).Time("departure", when).Msg("Departures updated")
	logger.Debug().Str("run", dep.RunRef).Str("platform", dep.Platform()).Int("route", dep.RouteID).Msg("Selected departure")
}

func (f *Fetcher) finish(ctx context.Context, res CycleResult, logger zerolog.Logger) {
	f.metrics.RecordCycle(string(res.Outcome), res.FinishedAt.Sub(res.StartedAt))
	switch res.Outcome {
	case OutcomePublished:
		f.metrics.SetRemaining(res.Remaining, true)
	case OutcomeAbsent:
		f.metrics.SetRemaining(0, false)
	}

	f.mu.Lock()
	f.last = &res
	f.mu.Unlock()

	if f.recorder == nil {
		return
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := f.recorder.RecordCycle(recordCtx, toRecord(res)); err != nil {
		logger.Warn().Err(err).Msg("Failed to record fetch cycle")
	}
}

func classify(err error) Outcome {
	var serviceErr *ptv.ServiceError
	switch {
	case ptv.IsTransient(err):
		return OutcomeTransient
	case errors.As(err, &serviceErr):
		return OutcomeService
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}

func attemptResult(err error) string {
	if err == nil {
		return "ok"
	}
	return string(classify(err))
}

func toRecord(res CycleResult) db.CycleRecord {
	rec := db.CycleRecord{
		CycleID:    res.ID,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Attempts:   res.Attempts,
		Outcome:    string(res.Outcome),
	}
	if res.Outcome == OutcomePublished {
		remaining := res.Remaining
		rec.SecondsRemaining = &remaining
	}
	if res.Departure != nil {
		rec.RunRef = res.Departure.RunRef
		rec.Platform = res.Departure.Platform()
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	return rec
}
