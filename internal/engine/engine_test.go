package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
)

type fakeStore struct {
	appends int32
	last    *model.Submission
}

func (f *fakeStore) Append(_ context.Context, sub *model.Submission) error {
	atomic.AddInt32(&f.appends, 1)
	f.last = sub
	return nil
}

func testBank(t *testing.T) ([]model.Section, []model.Question) {
	t.Helper()

	likertSec := model.Section{ID: uuid.New(), Code: "RIASEC", Kind: model.SectionKindLikert, OrderNum: 1}
	choiceSec := model.Section{ID: uuid.New(), Code: "APTITUDE", Kind: model.SectionKindChoice, OrderNum: 2}

	var questions []model.Question
	for _, c := range []string{"R", "R", "R", "I", "I", "I", "A", "A", "A", "S", "S", "S"} {
		questions = append(questions, model.Question{
			ID:        uuid.New(),
			SectionID: likertSec.ID,
			Kind:      model.SectionKindLikert,
			Category:  c,
			Area:      "Umum " + c,
		})
	}
	for i := 0; i < 4; i++ {
		questions = append(questions, model.Question{
			ID:           uuid.New(),
			SectionID:    choiceSec.ID,
			Kind:         model.SectionKindChoice,
			Domain:       "verbal",
			CorrectIndex: 1,
		})
	}
	return []model.Section{likertSec, choiceSec}, questions
}

func newTestSession(t *testing.T, store SubmissionStore, durationSec int) *Session {
	t.Helper()
	sections, questions := testBank(t)
	cfg := Config{
		DurationSec:              durationSec,
		MinCategoryAnswers:       3,
		IncompleteMinAnsweredPct: 50,
	}
	return New(uuid.New(), sections, questions, cfg, store, zerolog.Nop())
}

func mustStart(t *testing.T, s *Session) {
	t.Helper()
	fields, err := s.Start(model.Profile{Name: "Ana Lee", Email: "ana@x.com", School: "Central"})
	if err != nil {
		t.Fatalf("Start: %v (fields %v)", err, fields)
	}
}

func TestStartRejectsInvalidProfile(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, 60)

	fields, err := s.Start(model.Profile{Name: "A", Email: "not-an-email", School: ""})
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("err = %v, want ErrInvalidProfile", err)
	}
	for _, f := range []string{"name", "email", "school"} {
		if fields[f] == "" {
			t.Errorf("missing field flag for %q", f)
		}
	}
	if s.Phase() != model.SessionPhaseIntro {
		t.Errorf("phase = %s, want INTRO (state must be untouched)", s.Phase())
	}

	// A corrected profile is accepted afterwards.
	mustStart(t, s)
	if s.Phase() != model.SessionPhaseInSection {
		t.Errorf("phase = %s after valid start", s.Phase())
	}
}

func TestNavigationClampsAndInverts(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, 60)
	mustStart(t, s)

	layout := s.Layout()
	if got := s.Snapshot().CurrentPage; got != layout.FirstQuestionPage() {
		t.Fatalf("start page = %d, want %d", got, layout.FirstQuestionPage())
	}

	// Next then Prev from an interior page returns to the original page.
	p1, _ := s.Next()
	p2, _ := s.Prev()
	if p2 != p1-1 {
		t.Errorf("Next/Prev not inverse: %d then %d", p1, p2)
	}

	// Prev clamps at the intro page.
	for i := 0; i < 5; i++ {
		s.Prev()
	}
	if got := s.Snapshot().CurrentPage; got != layout.IntroPage {
		t.Errorf("page = %d after repeated Prev, want intro %d", got, layout.IntroPage)
	}

	// Next clamps at the last page.
	for i := 0; i < layout.LastPage+10; i++ {
		s.Next()
	}
	if got := s.Snapshot().CurrentPage; got != layout.LastPage {
		t.Errorf("page = %d after repeated Next, want last %d", got, layout.LastPage)
	}
}

func TestJumpKeepsTimer(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, 60)
	mustStart(t, s)
	ctx := context.Background()

	s.Tick(ctx)
	s.Tick(ctx)
	before := s.Snapshot().RemainingSec

	if _, err := s.Jump(3); err != nil {
		t.Fatalf("Jump: %v", err)
	}
	if got := s.Snapshot().RemainingSec; got != before {
		t.Errorf("remaining changed across Jump: %d → %d", before, got)
	}

	if _, err := s.Jump(999); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Jump(999) err = %v, want ErrInvalidPage", err)
	}
	if _, err := s.Jump(0); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("Jump(intro) err = %v, want ErrInvalidPage", err)
	}
}

func TestRecordAnswerKindMismatch(t *testing.T) {
	s := newTestSession(t, &fakeStore{}, 60)
	mustStart(t, s)

	likertID := s.questions[0].ID.String()
	choiceID := s.questions[len(s.questions)-1].ID.String()

	if _, err := s.RecordAnswer(likertID, model.ChoiceAnswer(1)); !errors.Is(err, ErrAnswerKind) {
		t.Errorf("choice answer on likert question: err = %v", err)
	}
	if _, err := s.RecordAnswer(choiceID, model.LikertAnswer(3)); !errors.Is(err, ErrAnswerKind) {
		t.Errorf("likert answer on choice question: err = %v", err)
	}
	if _, err := s.RecordAnswer(uuid.NewString(), model.LikertAnswer(3)); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown question: err = %v", err)
	}
	if _, err := s.RecordAnswer(likertID, model.AnswerValue{Kind: model.AnswerKindLikert, Likert: 9}); err == nil {
		t.Error("out-of-scale likert accepted")
	}

	sum, err := s.RecordAnswer(likertID, model.LikertAnswer(5))
	if err != nil {
		t.Fatalf("RecordAnswer: %v", err)
	}
	if sum.AnsweredCount != 1 {
		t.Errorf("answered count = %d, want 1", sum.AnsweredCount)
	}
}

func TestTimerExpiryForcesSubmissionOnce(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, store, 3)
	mustStart(t, s)
	ctx := context.Background()

	var expired int
	for i := 0; i < 6; i++ {
		if res := s.Tick(ctx); res.Expired {
			expired++
			if res.Submission == nil {
				t.Error("expiry tick returned no submission")
			}
		}
	}

	if expired != 1 {
		t.Fatalf("expiry fired %d times, want exactly 1", expired)
	}
	if got := atomic.LoadInt32(&store.appends); got != 1 {
		t.Fatalf("store.Append called %d times, want 1", got)
	}
	if s.Phase() != model.SessionPhaseSubmitted {
		t.Errorf("phase = %s, want SUBMITTED", s.Phase())
	}

	// A manual end after expiry is a no-op.
	if _, err := s.End(ctx); !errors.Is(err, ErrAlreadySubmitted) {
		t.Errorf("End after expiry: err = %v, want ErrAlreadySubmitted", err)
	}
	if got := atomic.LoadInt32(&store.appends); got != 1 {
		t.Errorf("store.Append called %d times after duplicate end", got)
	}
}

func TestManualEndSuppressesLaterExpiry(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, store, 2)
	mustStart(t, s)
	ctx := context.Background()

	if _, err := s.End(ctx); err != nil {
		t.Fatalf("End: %v", err)
	}

	// The countdown keeps getting host ticks; none may submit again.
	for i := 0; i < 4; i++ {
		if res := s.Tick(ctx); res.Expired {
			t.Fatal("expiry fired after manual end")
		}
	}
	if got := atomic.LoadInt32(&store.appends); got != 1 {
		t.Errorf("store.Append called %d times, want 1", got)
	}
}

func TestEndToEndScoring(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, store, 600)

	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	s.clock = func() time.Time { return now }
	mustStart(t, s)

	// Answer every R question with 5, everything else untouched.
	countR := 0
	for _, q := range s.questions {
		if q.Category == "R" {
			if _, err := s.RecordAnswer(q.ID.String(), model.LikertAnswer(5)); err != nil {
				t.Fatalf("RecordAnswer: %v", err)
			}
			countR++
		}
	}

	now = now.Add(7 * time.Minute)
	sub, err := s.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	if len(sub.Top3) == 0 || sub.Top3[0] != "R" {
		t.Errorf("top3 = %v, want R first", sub.Top3)
	}
	if sub.RIASEC["R"] != 5*countR {
		t.Errorf("riasec.R = %d, want %d", sub.RIASEC["R"], 5*countR)
	}
	if sub.Name != "Ana Lee" || sub.Email != "ana@x.com" || sub.School != "Central" {
		t.Errorf("profile fields not carried: %+v", sub)
	}
	if sub.DurationSec != 420 {
		t.Errorf("duration_sec = %d, want 420", sub.DurationSec)
	}
	if !sub.TS.Equal(now) {
		t.Errorf("ts = %v, want %v", sub.TS, now)
	}
	// 3 of 16 questions answered → flagged incomplete under the 50% rule.
	if !sub.Incomplete {
		t.Error("submission not flagged incomplete")
	}
	if store.last != sub {
		t.Error("store did not receive the returned submission")
	}
}

func TestCompleteSubmissionNotFlagged(t *testing.T) {
	store := &fakeStore{}
	s := newTestSession(t, store, 600)
	mustStart(t, s)

	for _, q := range s.questions {
		var ans model.AnswerValue
		if q.Kind == model.SectionKindLikert {
			ans = model.LikertAnswer(4)
		} else {
			ans = model.ChoiceAnswer(1)
		}
		if _, err := s.RecordAnswer(q.ID.String(), ans); err != nil {
			t.Fatalf("RecordAnswer: %v", err)
		}
	}

	sub, err := s.End(context.Background())
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if sub.Incomplete {
		t.Error("fully answered submission flagged incomplete")
	}
	if sub.Aptitude["verbal"] != 4 {
		t.Errorf("aptitude verbal = %d, want 4", sub.Aptitude["verbal"])
	}
}
