package testutil

import (
	"testing"
	"time"
)

func TestFrozenClock(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewFrozenClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}

	// Now() does not advance on its own.
	if !c.Now().Equal(c.Now()) {
		t.Error("Now() drifted between calls")
	}

	next := c.Advance(time.Hour)
	if !next.Equal(start.Add(time.Hour)) {
		t.Errorf("Advance() = %v, want %v", next, start.Add(time.Hour))
	}
	if !c.Now().Equal(next) {
		t.Errorf("Now() after advance = %v, want %v", c.Now(), next)
	}

	pinned := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(pinned)
	if !c.Now().Equal(pinned) {
		t.Errorf("Now() after Set = %v, want %v", c.Now(), pinned)
	}
}
