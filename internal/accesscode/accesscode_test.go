package accesscode

import (
	"strings"
	"testing"
	"time"
)

func TestValidFormat(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABCD-EFGH-JKMN", true},
		{"2345-6789-WXYZ", true},
		{"abcd-efgh-jkmn", false}, // lowercase: normalize first
		{"ABCD-EFGH-JKM", false},  // short group
		{"ABCDEFGHJKMN", false},   // missing delimiters
		{"ABCD EFGH JKMN", false}, // wrong delimiter
		{"ABCI-EFGH-JKMN", false}, // I excluded
		{"ABCO-EFGH-JKMN", false}, // O excluded
		{"ABCL-EFGH-JKMN", false}, // L excluded
		{"ABC0-EFGH-JKMN", false}, // 0 excluded
		{"ABC1-EFGH-JKMN", false}, // 1 excluded
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidFormat(tt.code); got != tt.want {
			t.Errorf("ValidFormat(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  abcd-efgh-jkmn "); got != "ABCD-EFGH-JKMN" {
		t.Errorf("Normalize = %q", got)
	}
}

func TestRotatingDeterministicWithinBucket(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	later := base.Add(29 * time.Minute) // same 30-minute bucket

	a := Rotating("shared-seed", 30, 0, base)
	b := Rotating("shared-seed", 30, 0, later)
	if a != b {
		t.Errorf("same bucket produced different codes: %q vs %q", a, b)
	}
	if !ValidFormat(a) {
		t.Errorf("rotating code %q does not match wire format", a)
	}
}

func TestRotatingChangesAcrossBuckets(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	prev := Rotating("shared-seed", 30, 0, base)
	for i := 1; i <= 6; i++ {
		cur := Rotating("shared-seed", 30, 0, base.Add(time.Duration(i)*30*time.Minute))
		if cur == prev {
			t.Errorf("adjacent buckets %d and %d produced the same code %q", i-1, i, cur)
		}
		prev = cur
	}
}

func TestRotatingOffsetMatchesNextBucket(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	next := Rotating("seed", 30, 1, base)
	actual := Rotating("seed", 30, 0, base.Add(30*time.Minute))
	if next != actual {
		t.Errorf("offset +1 = %q, next bucket = %q", next, actual)
	}
}

func TestRotatingSeedSensitivity(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if Rotating("seed-a", 30, 0, now) == Rotating("seed-b", 30, 0, now) {
		t.Error("different seeds produced the same code")
	}
}

func TestGenerateRandomCodes(t *testing.T) {
	codes, err := GenerateRandomCodes(50)
	if err != nil {
		t.Fatalf("GenerateRandomCodes: %v", err)
	}
	if len(codes) != 50 {
		t.Fatalf("got %d codes, want 50", len(codes))
	}

	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if !ValidFormat(c) {
			t.Errorf("code %q does not match wire format", c)
		}
		if seen[c] {
			t.Errorf("duplicate code %q in one batch", c)
		}
		seen[c] = true
		for _, r := range strings.ReplaceAll(c, Delimiter, "") {
			if !strings.ContainsRune(Alphabet, r) {
				t.Errorf("code %q contains %q outside the alphabet", c, r)
			}
		}
	}
}
