package clockface

import (
	"errors"
	"fmt"
	"time"
)

// ErrClockSourceUnavailable reports a wall-clock read that cannot be shown
var ErrClockSourceUnavailable = errors.New("clock source unavailable")

// Digit positions on the face, most significant first
const (
	HourTens = iota
	HourOnes
	MinuteTens
	MinuteOnes
	SecondTens
	SecondOnes
)

// Reading is a wall-clock snapshot in 24-hour form
type Reading struct {
	Hour   int
	Minute int
	Second int
}

// Digits holds the six digit values in position order
type Digits [6]int

// Read converts t to a Reading in loc. A nil loc means local time.
func Read(t time.Time, loc *time.Location) (Reading, error) {
	if t.IsZero() || t.Before(time.Unix(0, 0)) {
		return Reading{}, fmt.Errorf("%w: implausible time %v", ErrClockSourceUnavailable, t)
	}
	if loc == nil {
		loc = time.Local
	}
	h, m, s := t.In(loc).Clock()
	return Reading{Hour: h, Minute: m, Second: s}, nil
}

// Validate checks the reading is a legal 24-hour time
func (r Reading) Validate() error {
	if r.Hour < 0 || r.Hour > 23 || r.Minute < 0 || r.Minute > 59 || r.Second < 0 || r.Second > 59 {
		return fmt.Errorf("%w: out of range %02d:%02d:%02d", ErrClockSourceUnavailable, r.Hour, r.Minute, r.Second)
	}
	return nil
}

// Digits decomposes the reading into its six display digits
func (r Reading) Digits() Digits {
	return Digits{
		r.Hour / 10, r.Hour % 10,
		r.Minute / 10, r.Minute % 10,
		r.Second / 10, r.Second % 10,
	}
}

// String formats the reading as HH:MM:SS
func (r Reading) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", r.Hour, r.Minute, r.Second)
}

// String formats the digits as HH:MM:SS
func (d Digits) String() string {
	return fmt.Sprintf("%d%d:%d%d:%d%d", d[0], d[1], d[2], d[3], d[4], d[5])
}
