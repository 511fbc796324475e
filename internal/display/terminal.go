package display

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// each character cell covers cellW x cellH panel pixels
	cellW = 4
	cellH = 8

	cursorHome  = "\x1b[H"
	clearScreen = "\x1b[2J"
)

// Terminal previews the panel as block characters framed by lipgloss
type Terminal struct {
	out    io.Writer
	width  int
	height int
	style  lipgloss.Style
	state  panelState
}

// NewTerminal creates a terminal display of the given panel size
func NewTerminal(out io.Writer, width, height int) *Terminal {
	return &Terminal{
		out:    out,
		width:  width,
		height: height,
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
	}
}

func (t *Terminal) Clear(c color.Gray) error {
	if err := t.state.checkOpen(); err != nil {
		return err
	}

	frame := image.NewGray(image.Rect(0, 0, t.width, t.height))
	for i := range frame.Pix {
		frame.Pix[i] = c.Y
	}
	t.state.hasBase = false
	return t.write(clearScreen+cursorHome, frame)
}

func (t *Terminal) InitBasePartialFrame(frame *image.Gray) error {
	if err := t.state.checkOpen(); err != nil {
		return err
	}
	if err := t.write(cursorHome, frame); err != nil {
		return err
	}
	t.state.hasBase = true
	return nil
}

func (t *Terminal) RenderPartial(frame *image.Gray) error {
	if err := t.state.checkPartial(); err != nil {
		return err
	}
	return t.write(cursorHome, frame)
}

func (t *Terminal) Shutdown() error {
	if err := t.state.checkOpen(); err != nil {
		return err
	}
	t.state.closed = true
	_, err := fmt.Fprintln(t.out)
	return err
}

func (t *Terminal) write(prefix string, frame *image.Gray) error {
	_, err := io.WriteString(t.out, prefix+t.style.Render(Blocks(frame))+"\n")
	return err
}

// Blocks downsamples frame into rows of full-block and space characters. A
// cell is drawn dark when the mean gray level of its pixels is below half.
func Blocks(frame *image.Gray) string {
	b := frame.Bounds()
	var sb strings.Builder

	for y := b.Min.Y; y < b.Max.Y; y += cellH {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x += cellW {
			sum, n := 0, 0
			for dy := 0; dy < cellH && y+dy < b.Max.Y; dy++ {
				for dx := 0; dx < cellW && x+dx < b.Max.X; dx++ {
					sum += int(frame.GrayAt(x+dx, y+dy).Y)
					n++
				}
			}
			if sum < n*128 {
				sb.WriteRune('█')
			} else {
				sb.WriteByte(' ')
			}
		}
	}
	return sb.String()
}
