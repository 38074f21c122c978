// Package paging resolves the ordered section list into global page
// boundaries. Page 0 is reserved for the intro/profile screen; every
// question occupies exactly one page. Adding a section is a data change,
// never a formula change.
package paging

// Layout holds the computed page boundaries for one question bank.
type Layout struct {
	IntroPage      int
	SectionStarts  []int
	LastPage       int
	TotalQuestions int

	lengths []int
}

// Boundaries computes the layout for an ordered list of section lengths.
// SectionStarts[i] is the first page of section i: the running sum of prior
// lengths offset by 1. A zero-length section gets no pages; its start equals
// the next section's start and Locate skips it.
func Boundaries(lengths []int) Layout {
	l := Layout{
		IntroPage:     0,
		SectionStarts: make([]int, len(lengths)),
		lengths:       append([]int(nil), lengths...),
	}

	page := 1
	total := 0
	for i, n := range lengths {
		if n < 0 {
			n = 0
			l.lengths[i] = 0
		}
		l.SectionStarts[i] = page
		page += n
		total += n
	}

	l.TotalQuestions = total
	if total == 0 {
		l.LastPage = l.IntroPage
	} else {
		l.LastPage = page - 1
	}
	return l
}

// FirstQuestionPage is the page entered from the intro screen, or IntroPage
// when the bank is empty.
func (l Layout) FirstQuestionPage() int {
	if l.TotalQuestions == 0 {
		return l.IntroPage
	}
	return l.IntroPage + 1
}

// Locate returns the section index and within-section index for a page.
// ok is false for the intro page, pages past LastPage, and empty banks.
func (l Layout) Locate(page int) (section, index int, ok bool) {
	if page <= l.IntroPage || page > l.LastPage {
		return 0, 0, false
	}
	for i, start := range l.SectionStarts {
		n := l.lengths[i]
		if n == 0 {
			continue
		}
		if page >= start && page < start+n {
			return i, page - start, true
		}
	}
	return 0, 0, false
}

// GlobalOrdinal returns the 1-based position of a page in the cross-section
// question sequence, or 0 outside the question range. Ordinals are
// continuous across section boundaries.
func (l Layout) GlobalOrdinal(page int) int {
	section, index, ok := l.Locate(page)
	if !ok {
		return 0
	}
	ordinal := index + 1
	for i := 0; i < section; i++ {
		ordinal += l.lengths[i]
	}
	return ordinal
}

// Clamp restricts a page to the valid [IntroPage, LastPage] range.
func (l Layout) Clamp(page int) int {
	if page < l.IntroPage {
		return l.IntroPage
	}
	if page > l.LastPage {
		return l.LastPage
	}
	return page
}
