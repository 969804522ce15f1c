package clockface

import (
	"sync"

	"github.com/zgpcy/ledclock/internal/display"
)

// Point is a position in face coordinates
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dot is one colon LED
type Dot struct {
	Center Point `json:"center"`
	Radius int   `json:"radius"`
}

// Layout places the six digits and the two colon dot pairs
type Layout struct {
	DigitX []int `json:"digit_x"`
	Dots   []Dot `json:"dots"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
}

// Glyph geometry in face coordinates
const (
	DigitSpacing = 80
	DigitPad     = 20
	GlyphWidth   = 54
	GlyphHeight  = 100
	DotRadius    = 6
)

// DefaultLayout returns the classic HH:MM:SS arrangement: every other digit
// is nudged right so pairs sit together, with colons after hours and minutes.
func DefaultLayout() Layout {
	l := Layout{
		DigitX: make([]int, display.Positions),
		Height: GlyphHeight,
	}
	for i := range l.DigitX {
		l.DigitX[i] = i*DigitSpacing + ((i+1)%2)*DigitPad
	}
	for _, pair := range []int{1, 3} {
		x := pair*DigitSpacing + GlyphWidth
		l.Dots = append(l.Dots,
			Dot{Center: Point{X: x + 20, Y: 44}, Radius: DotRadius},
			Dot{Center: Point{X: x + 17, Y: 64}, Radius: DotRadius},
		)
	}
	l.Width = l.DigitX[display.Positions-1] + GlyphWidth
	return l
}

// Face is the clock widget: an on/off palette, a layout and the digits
// currently shown. It is itself a display.Sink that records each digit and
// forwards it to the glyph renderer.
type Face struct {
	palette  display.Palette
	layout   Layout
	renderer display.Sink

	mu     sync.RWMutex
	digits Digits
	frames uint64
}

// NewFace builds a face with the given colors drawing through renderer.
// A nil renderer keeps state only.
func NewFace(on, off display.Color, renderer display.Sink) *Face {
	return &Face{
		palette:  display.Palette{On: on, Off: off},
		layout:   DefaultLayout(),
		renderer: renderer,
	}
}

// SetDigit implements display.Sink. Out of range positions are ignored.
func (f *Face) SetDigit(position, value int) {
	if position < 0 || position >= display.Positions {
		return
	}
	f.mu.Lock()
	f.digits[position] = value
	f.mu.Unlock()

	if f.renderer != nil {
		f.renderer.SetDigit(position, value)
	}
}

// Flush implements display.Flusher
func (f *Face) Flush() {
	f.mu.Lock()
	f.frames++
	f.mu.Unlock()

	if f.renderer != nil {
		display.Flush(f.renderer)
	}
}

// Digits returns the digits currently shown
func (f *Face) Digits() Digits {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.digits
}

// Frames returns the number of complete frames pushed to the face
func (f *Face) Frames() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.frames
}

// Palette returns the face colors
func (f *Face) Palette() display.Palette {
	return f.palette
}

// Layout returns the face geometry
func (f *Face) Layout() Layout {
	return f.layout
}
