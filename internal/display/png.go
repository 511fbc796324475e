package display

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
)

// PNG writes every refresh to an image file, replacing it atomically
type PNG struct {
	path   string
	width  int
	height int
	state  panelState
}

// NewPNG creates a file-backed display of the given panel size
func NewPNG(path string, width, height int) *PNG {
	return &PNG{path: path, width: width, height: height}
}

func (p *PNG) Clear(c color.Gray) error {
	if err := p.state.checkOpen(); err != nil {
		return err
	}

	frame := image.NewGray(image.Rect(0, 0, p.width, p.height))
	for i := range frame.Pix {
		frame.Pix[i] = c.Y
	}
	p.state.hasBase = false
	return p.save(frame)
}

func (p *PNG) InitBasePartialFrame(frame *image.Gray) error {
	if err := p.state.checkOpen(); err != nil {
		return err
	}
	if err := p.save(frame); err != nil {
		return err
	}
	p.state.hasBase = true
	return nil
}

func (p *PNG) RenderPartial(frame *image.Gray) error {
	if err := p.state.checkPartial(); err != nil {
		return err
	}
	return p.save(frame)
}

func (p *PNG) Shutdown() error {
	if err := p.state.checkOpen(); err != nil {
		return err
	}
	p.state.closed = true
	return nil
}

// save writes to a temp file in the target directory and renames it over the target
func (p *PNG) save(frame *image.Gray) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".countdown-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := png.Encode(tmp, frame); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, p.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move frame into place: %w", err)
	}
	return nil
}
