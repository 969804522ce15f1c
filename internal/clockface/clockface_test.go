package clockface

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zgpcy/ledclock/internal/display"
)

func TestReading_Digits_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		want    Digits
	}{
		{"morning", Reading{Hour: 9, Minute: 5, Second: 0}, Digits{0, 9, 0, 5, 0, 0}},
		{"last second of day", Reading{Hour: 23, Minute: 59, Second: 59}, Digits{2, 3, 5, 9, 5, 9}},
		{"midnight", Reading{}, Digits{0, 0, 0, 0, 0, 0}},
		{"afternoon", Reading{Hour: 14, Minute: 30, Second: 7}, Digits{1, 4, 3, 0, 0, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.reading.Digits())
		})
	}
}

func TestReading_Digits_Exhaustive(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			for s := 0; s < 60; s++ {
				r := Reading{Hour: h, Minute: m, Second: s}
				d := r.Digits()
				want := Digits{h / 10, h % 10, m / 10, m % 10, s / 10, s % 10}
				if d != want {
					t.Fatalf("%v: got %v, want %v", r, d, want)
				}
				if d[HourTens] > 2 || d[MinuteTens] > 5 || d[SecondTens] > 5 {
					t.Fatalf("%v: tens digit out of range: %v", r, d)
				}
				if d != r.Digits() {
					t.Fatalf("%v: decomposition not repeatable", r)
				}
			}
		}
	}
}

func TestRead(t *testing.T) {
	ts := time.Date(2026, 10, 18, 21, 7, 45, 500_000_000, time.UTC)

	r, err := Read(ts, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Reading{Hour: 21, Minute: 7, Second: 45}, r)
	assert.Equal(t, "21:07:45", r.String())
	assert.Equal(t, "21:07:45", r.Digits().String())
}

func TestRead_Location(t *testing.T) {
	ts := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC)
	plusTwo := time.FixedZone("UTC+2", 2*60*60)

	r, err := Read(ts, plusTwo)
	require.NoError(t, err)
	assert.Equal(t, Reading{Hour: 1, Minute: 30, Second: 0}, r)
}

func TestRead_Implausible(t *testing.T) {
	_, err := Read(time.Time{}, time.UTC)
	assert.True(t, errors.Is(err, ErrClockSourceUnavailable))

	_, err = Read(time.Unix(-10, 0), time.UTC)
	assert.ErrorIs(t, err, ErrClockSourceUnavailable)
}

func TestReading_Validate(t *testing.T) {
	assert.NoError(t, Reading{Hour: 23, Minute: 59, Second: 59}.Validate())
	assert.ErrorIs(t, Reading{Hour: 24}.Validate(), ErrClockSourceUnavailable)
	assert.ErrorIs(t, Reading{Minute: 60}.Validate(), ErrClockSourceUnavailable)
	assert.ErrorIs(t, Reading{Second: -1}.Validate(), ErrClockSourceUnavailable)
}

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	assert.Equal(t, []int{20, 80, 180, 240, 340, 400}, l.DigitX)
	require.Len(t, l.Dots, 4)
	assert.Equal(t, Point{X: 154, Y: 44}, l.Dots[0].Center)
	assert.Equal(t, Point{X: 151, Y: 64}, l.Dots[1].Center)
	assert.Equal(t, Point{X: 314, Y: 44}, l.Dots[2].Center)
	assert.Equal(t, Point{X: 311, Y: 64}, l.Dots[3].Center)
	for _, d := range l.Dots {
		assert.Equal(t, DotRadius, d.Radius)
	}
	assert.Equal(t, 454, l.Width)
	assert.Equal(t, GlyphHeight, l.Height)
}

type recorder struct {
	pushes  [][2]int
	flushes int
}

func (r *recorder) SetDigit(p, v int) { r.pushes = append(r.pushes, [2]int{p, v}) }
func (r *recorder) Flush()            { r.flushes++ }

func TestFace_RecordsAndForwards(t *testing.T) {
	rec := &recorder{}
	on := display.MustParseColor("#ff4500")
	off := display.MustParseColor("#1a1a1a")
	f := NewFace(on, off, rec)

	for i, v := range (Reading{Hour: 9, Minute: 5}).Digits() {
		f.SetDigit(i, v)
	}
	f.Flush()

	assert.Equal(t, Digits{0, 9, 0, 5, 0, 0}, f.Digits())
	assert.Len(t, rec.pushes, 6)
	assert.Equal(t, [2]int{1, 9}, rec.pushes[1])
	assert.Equal(t, 1, rec.flushes)
	assert.Equal(t, uint64(1), f.Frames())
	assert.Equal(t, display.Palette{On: on, Off: off}, f.Palette())
}

func TestFace_IgnoresBadPosition(t *testing.T) {
	rec := &recorder{}
	f := NewFace(display.Color{}, display.Color{}, rec)

	f.SetDigit(-1, 3)
	f.SetDigit(6, 3)

	assert.Empty(t, rec.pushes)
	assert.Equal(t, Digits{}, f.Digits())
}

func TestFace_NilRenderer(t *testing.T) {
	f := NewFace(display.Color{}, display.Color{}, nil)
	assert.NotPanics(t, func() {
		f.SetDigit(0, 1)
		f.Flush()
	})
	assert.Equal(t, 1, f.Digits()[0])
}
