package clock

import (
	"testing"
	"time"
)

func TestManualNeverGoesBackwards(t *testing.T) {
	c := NewManual(10)

	c.Set(5)
	if got := c.Now(); got != 10 {
		t.Errorf("Set(5) moved clock back: got %v", got)
	}

	c.Advance(-1)
	if got := c.Now(); got != 10 {
		t.Errorf("Advance(-1) moved clock back: got %v", got)
	}

	c.Advance(0.5)
	if got := c.Now(); got != 10.5 {
		t.Errorf("expected 10.5, got %v", got)
	}

	c.Set(12)
	if got := c.Now(); got != 12 {
		t.Errorf("expected 12, got %v", got)
	}
}

func TestWallIsMonotonic(t *testing.T) {
	c := NewWall()
	prev := c.Now()
	if prev < 0 {
		t.Fatalf("wall clock started negative: %v", prev)
	}
	for i := 0; i < 100; i++ {
		now := c.Now()
		if now < prev {
			t.Fatalf("wall clock went backwards: %v < %v", now, prev)
		}
		prev = now
	}

	time.Sleep(5 * time.Millisecond)
	if c.Now() < 0.004 {
		t.Errorf("wall clock did not advance after sleep: %v", c.Now())
	}
}
