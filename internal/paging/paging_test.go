package paging

import "testing"

func TestBoundaries(t *testing.T) {
	tests := []struct {
		name       string
		lengths    []int
		wantStarts []int
		wantLast   int
		wantTotal  int
	}{
		{
			name:       "three sections",
			lengths:    []int{42, 10, 8},
			wantStarts: []int{1, 43, 53},
			wantLast:   60,
			wantTotal:  60,
		},
		{
			name:       "single section",
			lengths:    []int{5},
			wantStarts: []int{1},
			wantLast:   5,
			wantTotal:  5,
		},
		{
			name:       "zero-length section in the middle",
			lengths:    []int{3, 0, 4},
			wantStarts: []int{1, 4, 4},
			wantLast:   7,
			wantTotal:  7,
		},
		{
			name:       "all empty",
			lengths:    []int{0, 0},
			wantStarts: []int{1, 1},
			wantLast:   0,
			wantTotal:  0,
		},
		{
			name:       "no sections",
			lengths:    nil,
			wantStarts: []int{},
			wantLast:   0,
			wantTotal:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Boundaries(tt.lengths)
			if l.IntroPage != 0 {
				t.Errorf("IntroPage = %d, want 0", l.IntroPage)
			}
			if len(l.SectionStarts) != len(tt.wantStarts) {
				t.Fatalf("SectionStarts = %v, want %v", l.SectionStarts, tt.wantStarts)
			}
			for i, want := range tt.wantStarts {
				if l.SectionStarts[i] != want {
					t.Errorf("SectionStarts[%d] = %d, want %d", i, l.SectionStarts[i], want)
				}
			}
			if l.LastPage != tt.wantLast {
				t.Errorf("LastPage = %d, want %d", l.LastPage, tt.wantLast)
			}
			if l.TotalQuestions != tt.wantTotal {
				t.Errorf("TotalQuestions = %d, want %d", l.TotalQuestions, tt.wantTotal)
			}
		})
	}
}

// Ordinals must increase by exactly 1 per forward step and stay continuous
// across section boundaries: no gaps, no repeats.
func TestGlobalOrdinalContinuity(t *testing.T) {
	l := Boundaries([]int{42, 0, 10, 8})

	if got := l.GlobalOrdinal(l.IntroPage); got != 0 {
		t.Errorf("GlobalOrdinal(intro) = %d, want 0", got)
	}
	if got := l.GlobalOrdinal(l.LastPage + 1); got != 0 {
		t.Errorf("GlobalOrdinal(past last) = %d, want 0", got)
	}

	prev := 0
	for page := l.IntroPage + 1; page <= l.LastPage; page++ {
		got := l.GlobalOrdinal(page)
		if got != prev+1 {
			t.Fatalf("GlobalOrdinal(%d) = %d, want %d", page, got, prev+1)
		}
		prev = got
	}
	if prev != l.TotalQuestions {
		t.Errorf("final ordinal = %d, want %d", prev, l.TotalQuestions)
	}
}

func TestLocate(t *testing.T) {
	l := Boundaries([]int{3, 0, 4})

	tests := []struct {
		page        int
		wantSection int
		wantIndex   int
		wantOK      bool
	}{
		{0, 0, 0, false},
		{1, 0, 0, true},
		{3, 0, 2, true},
		{4, 2, 0, true}, // empty section 1 is skipped
		{7, 2, 3, true},
		{8, 0, 0, false},
		{-1, 0, 0, false},
	}

	for _, tt := range tests {
		section, index, ok := l.Locate(tt.page)
		if section != tt.wantSection || index != tt.wantIndex || ok != tt.wantOK {
			t.Errorf("Locate(%d) = (%d, %d, %v), want (%d, %d, %v)",
				tt.page, section, index, ok, tt.wantSection, tt.wantIndex, tt.wantOK)
		}
	}
}

func TestClamp(t *testing.T) {
	l := Boundaries([]int{5})

	if got := l.Clamp(-3); got != 0 {
		t.Errorf("Clamp(-3) = %d, want 0", got)
	}
	if got := l.Clamp(3); got != 3 {
		t.Errorf("Clamp(3) = %d, want 3", got)
	}
	if got := l.Clamp(99); got != 5 {
		t.Errorf("Clamp(99) = %d, want 5", got)
	}
}

func TestFirstQuestionPage(t *testing.T) {
	if got := Boundaries([]int{5}).FirstQuestionPage(); got != 1 {
		t.Errorf("FirstQuestionPage = %d, want 1", got)
	}
	if got := Boundaries([]int{0}).FirstQuestionPage(); got != 0 {
		t.Errorf("FirstQuestionPage (empty bank) = %d, want 0", got)
	}
}
