package clock

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestReal_Now(t *testing.T) {
	c := Real()

	before := time.Now()
	now := c.Now()
	after := time.Now()

	if now.Before(before) || now.After(after) {
		t.Fatalf("Real().Now() = %v, want between %v and %v", now, before, after)
	}
}

func TestEpochMillis(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_250)
	fc := clockwork.NewFakeClockAt(start)

	if got := EpochMillis(fc); got != 1_700_000_000_250 {
		t.Errorf("EpochMillis() = %d, want 1700000000250", got)
	}

	fc.Advance(750 * time.Millisecond)
	if got := EpochMillis(fc); got != 1_700_000_001_000 {
		t.Errorf("EpochMillis() after advance = %d, want 1700000001000", got)
	}
}

func TestUntilNextSecond(t *testing.T) {
	tests := []struct {
		name   string
		millis int64
		want   time.Duration
	}{
		{"mid second", 1_700_000_000_250, 750 * time.Millisecond},
		{"just after boundary", 1_700_000_000_001, 999 * time.Millisecond},
		{"just before boundary", 1_700_000_000_999, time.Millisecond},
		{"on boundary", 1_700_000_000_000, time.Second},
		{"epoch", 0, time.Second},
		{"before epoch", -250, 250 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UntilNextSecond(tt.millis); got != tt.want {
				t.Errorf("UntilNextSecond(%d) = %v, want %v", tt.millis, got, tt.want)
			}
		})
	}
}

func TestUntilNextSecond_LandsOnBoundary(t *testing.T) {
	for ms := int64(1_700_000_000_000); ms < 1_700_000_002_000; ms += 37 {
		next := ms + UntilNextSecond(ms).Milliseconds()
		if next%1000 != 0 {
			t.Fatalf("start %d: next tick %d is not on a second boundary", ms, next)
		}
		if next <= ms || next-ms > 1000 {
			t.Fatalf("start %d: next tick %d is not within the following second", ms, next)
		}
	}
}
