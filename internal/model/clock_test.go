package model

import (
	"testing"
	"time"
)

type fakeTime struct{ t time.Time }

func (f *fakeTime) now() time.Time { return f.t }

func TestClockCountsOnlyWhileRunning(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClock(time.Minute)
	c.now = ft.now

	ft.t = ft.t.Add(10 * time.Second)
	if got := c.GetTimeLeft(); got != time.Minute {
		t.Fatalf("stopped clock moved: %v", got)
	}

	c.Start()
	ft.t = ft.t.Add(15 * time.Second)
	if got := c.GetTimeLeft(); got != 45*time.Second {
		t.Fatalf("running clock = %v, want 45s", got)
	}
	c.Stop()
	ft.t = ft.t.Add(time.Hour)
	if got := c.Tenths(); got != 450 {
		t.Fatalf("tenths = %d, want 450", got)
	}
}

func TestClockTenthsFloorsAtZero(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClock(time.Second)
	c.now = ft.now
	c.Start()
	ft.t = ft.t.Add(5 * time.Second)
	if got := c.Tenths(); got != 0 {
		t.Fatalf("tenths = %d, want 0", got)
	}
	c.Reset(2 * time.Second)
	if got := c.Tenths(); got != 20 {
		t.Fatalf("after reset tenths = %d, want 20", got)
	}
}
