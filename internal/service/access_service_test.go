package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/accesscode"
	"github.com/emergency0committee-hub/eec-backend/internal/config"
)

func newGateService(seed string, interval int) *AccessService {
	cfg := &config.Config{
		RotatingSeed:            seed,
		RotatingIntervalMinutes: interval,
	}
	// The one-time repository is only reached after the rotating check, so
	// rotating-path tests run without a database.
	return NewAccessService(nil, cfg, zerolog.Nop())
}

func TestVerifyGateRejectsMalformedInput(t *testing.T) {
	s := newGateService("classroom-seed", 30)

	for _, raw := range []string{
		"",
		"ABCD",
		"ABCD-EFGH",
		"ABCD-EFGH-IJKL", // I and L are outside the alphabet
		"ABCDEFGHJKMN",   // missing delimiters
		"AB!D-EFGH-JKMN",
	} {
		if _, err := s.VerifyGate(context.Background(), raw); err != ErrCodeFormat {
			t.Errorf("VerifyGate(%q) err = %v, want ErrCodeFormat", raw, err)
		}
	}
}

func TestVerifyGateAcceptsCurrentRotatingCode(t *testing.T) {
	s := newGateService("classroom-seed", 30)
	now := time.Date(2026, 3, 9, 10, 12, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	code := accesscode.Rotating("classroom-seed", 30, 0, now)
	kind, err := s.VerifyGate(context.Background(), code)
	if err != nil {
		t.Fatalf("VerifyGate(current) err = %v", err)
	}
	if kind != CodeKindRotating {
		t.Fatalf("kind = %q, want %q", kind, CodeKindRotating)
	}
}

func TestVerifyGateAcceptsPreviousBucketCode(t *testing.T) {
	// A code read from the board just before rotation stays valid for one
	// more bucket.
	s := newGateService("classroom-seed", 30)
	now := time.Date(2026, 3, 9, 10, 31, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	previous := accesscode.Rotating("classroom-seed", 30, -1, now)
	kind, err := s.VerifyGate(context.Background(), previous)
	if err != nil {
		t.Fatalf("VerifyGate(previous bucket) err = %v", err)
	}
	if kind != CodeKindRotating {
		t.Fatalf("kind = %q, want %q", kind, CodeKindRotating)
	}
}

func TestVerifyGateNormalizesBeforeMatching(t *testing.T) {
	s := newGateService("classroom-seed", 30)
	now := time.Date(2026, 3, 9, 10, 12, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	code := accesscode.Rotating("classroom-seed", 30, 0, now)
	lowered := "  " + toLower(code) + " \n"
	if _, err := s.VerifyGate(context.Background(), lowered); err != nil {
		t.Fatalf("VerifyGate(lowercased, padded) err = %v", err)
	}
}

func TestCurrentRotatingDisabledWithoutSeed(t *testing.T) {
	s := newGateService("", 30)
	if _, _, err := s.CurrentRotating(); err != ErrRotatingDisabled {
		t.Fatalf("CurrentRotating() err = %v, want ErrRotatingDisabled", err)
	}
}

func TestCurrentRotatingNextMatchesFollowingBucket(t *testing.T) {
	s := newGateService("classroom-seed", 30)
	now := time.Date(2026, 3, 9, 10, 12, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	current, next, err := s.CurrentRotating()
	if err != nil {
		t.Fatalf("CurrentRotating() err = %v", err)
	}
	if current.Code == next.Code {
		t.Fatal("current and next rotating codes should differ")
	}
	if next.Bucket != current.Bucket+1 {
		t.Fatalf("next bucket = %d, want %d", next.Bucket, current.Bucket+1)
	}

	// The advertised next code is exactly what the current code becomes
	// after the rotation boundary.
	later := now.Add(30 * time.Minute)
	if got := accesscode.Rotating("classroom-seed", 30, 0, later); got != next.Code {
		t.Fatalf("code after rotation = %q, want advertised next %q", got, next.Code)
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
