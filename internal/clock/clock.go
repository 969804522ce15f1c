package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock provides the wall-clock reads and timers the scheduler needs.
// Both clockwork.NewRealClock() and clockwork.NewFakeClock() satisfy it.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
	NewTicker(d time.Duration) clockwork.Ticker
}

// Real returns a Clock backed by actual system time
func Real() Clock {
	return clockwork.NewRealClock()
}

// EpochMillis returns the current time as milliseconds since the Unix epoch
func EpochMillis(c Clock) int64 {
	return c.Now().UnixMilli()
}

// UntilNextSecond returns the time remaining until the next whole second
// boundary. A reading exactly on a boundary yields a full second.
func UntilNextSecond(epochMillis int64) time.Duration {
	rem := epochMillis % 1000
	if rem < 0 {
		rem += 1000
	}
	return time.Duration(1000-rem) * time.Millisecond
}
