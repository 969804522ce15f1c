// Package segment maps decimal digits onto seven-segment displays and lays
// the segments out as a small character grid.
//
// Segments are named in the usual way:
//
//	 aa
//	f  b
//	 gg
//	e  c
//	 dd
package segment

// Segment is a bit set of the seven segments a-g
type Segment uint8

const (
	A Segment = 1 << iota
	B
	C
	D
	E
	F
	G

	All = A | B | C | D | E | F | G
)

var patterns = [10]Segment{
	A | B | C | D | E | F, // 0
	B | C,                 // 1
	A | B | D | E | G,     // 2
	A | B | C | D | G,     // 3
	B | C | F | G,         // 4
	A | C | D | F | G,     // 5
	A | C | D | E | F | G, // 6
	A | B | C,             // 7
	All,                   // 8
	A | B | C | D | F | G, // 9
}

// For returns the lit segments for digit. Values outside 0-9 light nothing.
func For(digit int) Segment {
	if digit < 0 || digit > 9 {
		return 0
	}
	return patterns[digit]
}

// Has reports whether every segment in seg is set
func (s Segment) Has(seg Segment) bool {
	return s&seg == seg
}

// count returns how many segments are lit
func (s Segment) count() int {
	n := 0
	for v := s & All; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Grid dimensions of a rendered glyph
const (
	Rows = 5
	Cols = 4
)

// Cell is one character of a rendered glyph. Seg is zero for padding cells.
type Cell struct {
	Rune rune
	Seg  Segment
}

// Lit reports whether the cell belongs to a lit segment of pattern
func (c Cell) Lit(pattern Segment) bool {
	return c.Seg != 0 && pattern.Has(c.Seg)
}

const (
	horizontal = '━'
	vertical   = '┃'
)

// template is shared by every glyph; only the lit state changes per digit
var template = [Rows][Cols]Cell{
	{{' ', 0}, {horizontal, A}, {horizontal, A}, {' ', 0}},
	{{vertical, F}, {' ', 0}, {' ', 0}, {vertical, B}},
	{{' ', 0}, {horizontal, G}, {horizontal, G}, {' ', 0}},
	{{vertical, E}, {' ', 0}, {' ', 0}, {vertical, C}},
	{{' ', 0}, {horizontal, D}, {horizontal, D}, {' ', 0}},
}

// Text renders digit using on for lit segment cells and off for unlit ones
func Text(digit int, on, off func(rune) string) [Rows]string {
	pattern := For(digit)
	var out [Rows]string
	for r, row := range template {
		line := ""
		for _, cell := range row {
			switch {
			case cell.Seg == 0:
				line += string(cell.Rune)
			case cell.Lit(pattern):
				line += on(cell.Rune)
			default:
				line += off(cell.Rune)
			}
		}
		out[r] = line
	}
	return out
}
