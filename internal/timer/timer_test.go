package timer

import "testing"

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	c := New()
	c.Start(5)

	for i := 0; i < 4; i++ {
		if fired := c.Tick(); fired {
			t.Fatalf("tick %d fired expiry early (remaining %d)", i+1, c.Remaining())
		}
		if c.Expired() {
			t.Fatalf("expired after tick %d, want only on the 5th", i+1)
		}
	}

	if !c.Tick() {
		t.Fatal("5th tick did not fire expiry")
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining = %d after expiry, want 0", c.Remaining())
	}
	if !c.Expired() {
		t.Error("Expired() = false after reaching zero")
	}

	// Ticks after expiry are no-ops and never re-fire.
	for i := 0; i < 3; i++ {
		if c.Tick() {
			t.Fatal("expiry fired a second time")
		}
		if c.Remaining() != 0 {
			t.Fatalf("remaining went to %d after expiry", c.Remaining())
		}
	}
}

func TestTickBeforeStartIsNoop(t *testing.T) {
	c := New()
	c.Reset(10)
	if c.Tick() {
		t.Error("tick fired on a stopped countdown")
	}
	if c.Remaining() != 10 {
		t.Errorf("remaining = %d, want 10", c.Remaining())
	}
}

func TestResetClearsExpiry(t *testing.T) {
	c := New()
	c.Start(1)
	if !c.Tick() {
		t.Fatal("expected expiry on first tick")
	}

	c.Start(2)
	if c.Expired() {
		t.Error("expired still set after restart")
	}
	if c.Tick() {
		t.Error("expiry fired with 1s remaining")
	}
	if !c.Tick() {
		t.Error("expiry did not fire after restart countdown drained")
	}
}

func TestStartNegativeClampsToZero(t *testing.T) {
	c := New()
	c.Start(-5)
	if c.Remaining() != 0 {
		t.Errorf("remaining = %d, want 0", c.Remaining())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		sec  int
		want string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{65, "01:05"},
		{600, "10:00"},
		{2400, "40:00"},
		{-7, "00:00"},
	}
	for _, tt := range tests {
		if got := Format(tt.sec); got != tt.want {
			t.Errorf("Format(%d) = %q, want %q", tt.sec, got, tt.want)
		}
	}
}
