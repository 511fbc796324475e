// Package render draws the live countdown onto the display once per second.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/train-countdown/countdown/internal/countdown"
	"github.com/train-countdown/countdown/internal/display"
	"github.com/train-countdown/countdown/internal/metrics"
)

// template is the widest text for minutes below 100; layout is computed from it
const template = "00:00"

// bandPadding extends the cleared band past the glyph bounds
const bandPadding = 2

var (
	white = color.Gray{Y: 0xff}
	black = image.NewUniform(color.Gray{Y: 0x00})
)

// ErrNotRunning is returned by Tick outside the Running state
var ErrNotRunning = errors.New("renderer is not running")

// State is the renderer lifecycle
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Config sizes the drawable region and sets the tick cadence
type Config struct {
	Width    int
	Height   int
	FontSize float64
	Interval time.Duration
}

// layout is the cached placement of the countdown for one frame size
type layout struct {
	size   image.Point
	chars  int
	origin fixed.Point26_6
	band   image.Rectangle
}

// Renderer reads the countdown store and pushes partial refreshes
type Renderer struct {
	display display.Display
	store   *countdown.Store
	clock   countdown.Clock
	metrics *metrics.Collector
	cfg     Config

	face   font.Face
	frame  *image.Gray
	layout *layout

	state     atomic.Int32
	closeOnce sync.Once
	closeErr  error

	lastText string
}

// Option is a function that configures the renderer
type Option func(*Renderer)

// WithClock replaces the system clock
func WithClock(clock countdown.Clock) Option {
	return func(r *Renderer) {
		r.clock = clock
	}
}

// WithMetrics sets the metrics collector
func WithMetrics(m *metrics.Collector) Option {
	return func(r *Renderer) {
		r.metrics = m
	}
}

// New creates a renderer. The display is not touched until Start.
func New(d display.Display, store *countdown.Store, cfg Config, opts ...Option) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}

	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    cfg.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	r := &Renderer{
		display: d,
		store:   store,
		clock:   countdown.RealClock{},
		cfg:     cfg,
		face:    face,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// State returns the current lifecycle state
func (r *Renderer) State() State {
	return State(r.state.Load())
}

// Start clears the panel and commits a blank base frame for partial refreshes.
// A failure here means the device is unusable.
func (r *Renderer) Start() error {
	if r.State() != StateUninitialized {
		return fmt.Errorf("cannot start renderer in state %s", r.State())
	}

	if err := r.display.Clear(white); err != nil {
		return fmt.Errorf("failed to clear display: %w", err)
	}

	r.frame = image.NewGray(image.Rect(0, 0, r.cfg.Width, r.cfg.Height))
	draw.Draw(r.frame, r.frame.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)

	if err := r.display.InitBasePartialFrame(r.frame); err != nil {
		return fmt.Errorf("failed to initialize base frame: %w", err)
	}

	if !r.state.CompareAndSwap(int32(StateUninitialized), int32(StateRunning)) {
		return errors.New("renderer closed during start")
	}
	log.Info().Int("width", r.cfg.Width).Int("height", r.cfg.Height).Msg("Display initialized")
	return nil
}

// Run ticks immediately and then once per interval until ctx is done.
// Refresh failures are logged and the loop keeps going.
func (r *Renderer) Run(ctx context.Context) error {
	if r.State() != StateRunning {
		return ErrNotRunning
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.Tick(r.clock.Now())
	for {
		select {
		case <-ticker.C:
			r.Tick(r.clock.Now())
		case <-ctx.Done():
			log.Info().Msg("Render loop stopped")
			return nil
		}
	}
}

// Tick draws the countdown for now and pushes a partial refresh
func (r *Renderer) Tick(now time.Time) error {
	if r.State() != StateRunning {
		return ErrNotRunning
	}

	text := countdown.Text(r.store.Read(), now)
	r.draw(text)

	if err := r.display.RenderPartial(r.frame); err != nil {
		r.metrics.RecordRender("error")
		log.Error().Err(err).Str("text", text).Msg("Partial refresh failed")
		return err
	}

	if text != r.lastText {
		log.Debug().Str("text", text).Msg("Countdown rendered")
	}
	r.lastText = text
	r.metrics.RecordRender("ok")
	return nil
}

// Close shuts the display down. It runs exactly once no matter how often it
// is called or whether Start succeeded.
func (r *Renderer) Close() error {
	r.closeOnce.Do(func() {
		r.state.Store(int32(StateTerminated))
		r.closeErr = r.display.Shutdown()
		if r.closeErr != nil {
			log.Error().Err(r.closeErr).Msg("Display shutdown failed")
			return
		}
		log.Info().Msg("Display shut down")
	})
	return r.closeErr
}

// draw clears the countdown band and draws text into it
func (r *Renderer) draw(text string) {
	prev := r.layout
	l := r.layoutFor(r.frame.Bounds().Size(), len(text))

	if prev != nil && prev != l {
		draw.Draw(r.frame, prev.band, image.NewUniform(white), image.Point{}, draw.Src)
	}
	draw.Draw(r.frame, l.band, image.NewUniform(white), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  r.frame,
		Src:  black,
		Face: r.face,
		Dot:  l.origin,
	}
	d.DrawString(text)
}

// layoutFor returns the centered placement for a frame size and text length,
// reusing the previous result while both are unchanged
func (r *Renderer) layoutFor(size image.Point, chars int) *layout {
	if r.layout != nil && r.layout.size == size && r.layout.chars == chars {
		return r.layout
	}

	advance := font.MeasureString(r.face, templateFor(chars)).Ceil()
	m := r.face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()

	x := (size.X - advance) / 2
	y := (size.Y-(ascent+descent))/2 + ascent

	r.layout = &layout{
		size:   size,
		chars:  chars,
		origin: fixed.P(x, y),
		band: image.Rect(x, y-ascent, x+advance, y+descent).
			Inset(-bandPadding).
			Intersect(image.Rectangle{Max: size}),
	}
	return r.layout
}

// templateFor returns the widest countdown text with the given length
func templateFor(chars int) string {
	if chars <= len(template) {
		return template
	}
	return strings.Repeat("0", chars-len(template)) + template
}
