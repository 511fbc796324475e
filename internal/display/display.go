// Package display drives the countdown output device.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
)

//go:generate mockgen -destination=mocks/mock_display.go -package=mocks -source=display.go Display

var (
	// ErrNoBaseFrame is returned by RenderPartial before a base frame was committed
	ErrNoBaseFrame = errors.New("partial refresh before base frame")
	// ErrClosed is returned by any call after Shutdown
	ErrClosed = errors.New("display is shut down")
)

// Display is a bistable panel that supports full clears and partial refreshes
type Display interface {
	// Clear fills the whole panel with c using a full refresh
	Clear(c color.Gray) error
	// InitBasePartialFrame commits frame as the base for later partial refreshes
	InitBasePartialFrame(frame *image.Gray) error
	// RenderPartial pushes frame using a partial refresh
	RenderPartial(frame *image.Gray) error
	// Shutdown puts the panel to sleep and releases the device
	Shutdown() error
}

// Driver names a display backend
type Driver string

const (
	DriverTerminal Driver = "terminal"
	DriverPNG      Driver = "png"
)

// Config selects and sizes a display backend
type Config struct {
	Driver  Driver
	Width   int
	Height  int
	PNGPath string
	// Out receives terminal frames; defaults to stdout
	Out io.Writer
}

// Open initializes the configured backend
func Open(cfg Config) (Display, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid display size %dx%d", cfg.Width, cfg.Height)
	}

	switch cfg.Driver {
	case DriverTerminal, "":
		out := cfg.Out
		if out == nil {
			out = os.Stdout
		}
		return NewTerminal(out, cfg.Width, cfg.Height), nil
	case DriverPNG:
		if cfg.PNGPath == "" {
			return nil, errors.New("png driver requires an output path")
		}
		return NewPNG(cfg.PNGPath, cfg.Width, cfg.Height), nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", cfg.Driver)
	}
}

// panelState tracks the refresh protocol shared by all backends
type panelState struct {
	hasBase bool
	closed  bool
}

func (s *panelState) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *panelState) checkPartial() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if !s.hasBase {
		return ErrNoBaseFrame
	}
	return nil
}
