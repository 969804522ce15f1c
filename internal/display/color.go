package display

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB color for lit or unlit segments
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Palette is the on/off color pair a clock face is built with
type Palette struct {
	On  Color
	Off Color
}

// ParseColor parses a "#rrggbb" hex string
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q: want #rrggbb", s)
	}

	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		rgb[i] = uint8(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// MustParseColor is like ParseColor but panics on error
func MustParseColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// String returns the color as "#rrggbb"
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler so colors serialize as hex
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
