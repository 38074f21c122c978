// Package engine owns the per-participant session state machine:
// Intro → InSection(page) → Submitted. Events are processed to completion
// under one lock, so a timer expiry and a manual end-test can race but only
// one ever completes the submission.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/paging"
	"github.com/emergency0committee-hub/eec-backend/internal/scoring"
	"github.com/emergency0committee-hub/eec-backend/internal/timer"
)

// SubmissionStore receives the finished-session record exactly once.
type SubmissionStore interface {
	Append(ctx context.Context, sub *model.Submission) error
}

// Config carries the tunable session parameters. The thresholds are explicit
// configuration, never hard-coded magic numbers.
type Config struct {
	DurationSec              int
	MinCategoryAnswers       int
	IncompleteMinAnsweredPct int
}

// Domain errors.
var (
	ErrInvalidProfile   = errors.New("profile validation failed")
	ErrNotStarted       = errors.New("session has not been started")
	ErrAlreadyStarted   = errors.New("session is already in progress")
	ErrAlreadySubmitted = errors.New("session is already submitted")
	ErrUnknownQuestion  = errors.New("unknown question id")
	ErrAnswerKind       = errors.New("answer kind does not match question kind")
	ErrInvalidPage      = errors.New("page outside the question range")
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// ValidateProfile checks the intro-form fields and returns per-field messages
// for anything rejected. An empty map means the profile is acceptable.
func ValidateProfile(p model.Profile) map[string]string {
	fields := make(map[string]string)
	if utf8.RuneCountInString(p.Name) < 2 {
		fields["name"] = "Nama minimal 2 karakter."
	}
	if utf8.RuneCountInString(p.School) < 2 {
		fields["school"] = "Nama sekolah minimal 2 karakter."
	}
	if !emailRx.MatchString(p.Email) {
		fields["email"] = "Format email tidak valid."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// TickResult reports the outcome of one timer tick.
type TickResult struct {
	RemainingSec int
	Expired      bool
	Submission   *model.Submission
}

// Session is one participant's assessment attempt. All exported methods are
// safe for concurrent use; each event runs to completion before the next.
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	cfg       Config
	layout    paging.Layout
	questions []model.Question
	pageQID   map[int]string

	phase     model.SessionPhase
	profile   model.Profile
	answers   map[string]model.AnswerValue
	page      int
	startedAt time.Time

	countdown  *timer.Countdown
	store      SubmissionStore
	clock      func() time.Time
	log        zerolog.Logger
	submission *model.Submission
}

// Option configures a Session at construction.
type Option func(*Session)

// WithClock injects a time source, used by tests for deterministic durations.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// New builds a session over the ordered section list. questions must be the
// flattened bank in section order; section lengths are derived from it.
func New(id uuid.UUID, sections []model.Section, questions []model.Question, cfg Config, store SubmissionStore, log zerolog.Logger, opts ...Option) *Session {
	lengths := make([]int, len(sections))
	for i, sec := range sections {
		for _, q := range questions {
			if q.SectionID == sec.ID {
				lengths[i]++
			}
		}
	}

	layout := paging.Boundaries(lengths)
	pageQID := make(map[int]string, len(questions))
	for i, q := range questions {
		pageQID[layout.IntroPage+1+i] = q.ID.String()
	}

	s := &Session{
		id:        id,
		cfg:       cfg,
		layout:    layout,
		questions: questions,
		pageQID:   pageQID,
		phase:     model.SessionPhaseIntro,
		answers:   make(map[string]model.AnswerValue),
		page:      layout.IntroPage,
		countdown: timer.New(),
		store:     store,
		clock:     time.Now,
		log:       log.With().Str("component", "session").Str("session_id", id.String()).Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Layout exposes the computed page boundaries.
func (s *Session) Layout() paging.Layout { return s.layout }

// Start validates the profile and enters the first question page. On
// validation failure the session state is untouched and the field map names
// every rejected input.
func (s *Session) Start(profile model.Profile) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case model.SessionPhaseInSection:
		return nil, ErrAlreadyStarted
	case model.SessionPhaseSubmitted:
		return nil, ErrAlreadySubmitted
	}

	if fields := ValidateProfile(profile); fields != nil {
		return fields, ErrInvalidProfile
	}

	s.profile = profile
	s.startedAt = s.clock()
	s.countdown.Start(s.cfg.DurationSec)
	s.page = s.layout.FirstQuestionPage()
	s.phase = model.SessionPhaseInSection

	s.log.Info().Str("school", profile.School).Int("duration_sec", s.cfg.DurationSec).Msg("Session started")
	return nil, nil
}

// Restore rebuilds an in-flight session from persisted state after a process
// restart. Only valid on a fresh session still on the intro page. Answers for
// unknown questions and invalid values are dropped rather than failing the
// whole restore. A zero remainingSec leaves the session one tick away from
// forced submission.
func (s *Session) Restore(profile model.Profile, answers map[string]model.AnswerValue, page int, startedAt time.Time, remainingSec int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case model.SessionPhaseInSection:
		return ErrAlreadyStarted
	case model.SessionPhaseSubmitted:
		return ErrAlreadySubmitted
	}

	s.profile = profile
	for id, v := range answers {
		if _, ok := s.findQuestion(id); ok && v.Valid() {
			s.answers[id] = v
		}
	}
	s.startedAt = startedAt
	s.countdown.Start(remainingSec)

	s.page = s.layout.Clamp(page)
	if _, _, ok := s.layout.Locate(s.page); !ok {
		s.page = s.layout.FirstQuestionPage()
	}
	s.phase = model.SessionPhaseInSection

	s.log.Info().Int("answers", len(s.answers)).Int("remaining_sec", remainingSec).Msg("Session restored")
	return nil
}

// Next advances one page, clamped at the last page. Returns the new page.
func (s *Session) Next() (int, error) {
	return s.move(func(p int) int { return p + 1 })
}

// Prev moves back one page, clamped at the intro page.
func (s *Session) Prev() (int, error) {
	return s.move(func(p int) int { return p - 1 })
}

func (s *Session) move(step func(int) int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInSection(); err != nil {
		return s.page, err
	}
	s.page = s.layout.Clamp(step(s.page))
	return s.page, nil
}

// Jump moves directly to a question page (palette navigation). It never
// resets the countdown. Pages outside the question range are rejected.
func (s *Session) Jump(page int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInSection(); err != nil {
		return s.page, err
	}
	if _, _, ok := s.layout.Locate(page); !ok {
		return s.page, ErrInvalidPage
	}
	s.page = page
	return s.page, nil
}

// RecordAnswer merges one answer into the session without changing the page
// and returns the recomputed live score summary.
func (s *Session) RecordAnswer(questionID string, value model.AnswerValue) (*scoring.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInSection(); err != nil {
		return nil, err
	}
	if !value.Valid() {
		return nil, fmt.Errorf("%w: kind=%q", ErrAnswerKind, value.Kind)
	}

	q, ok := s.findQuestion(questionID)
	if !ok {
		return nil, ErrUnknownQuestion
	}
	if (q.Kind == model.SectionKindLikert) != (value.Kind == model.AnswerKindLikert) {
		return nil, ErrAnswerKind
	}

	s.answers[questionID] = value
	return scoring.Summarize(s.questions, s.answers, s.cfg.MinCategoryAnswers), nil
}

// Tick consumes one countdown second. When the countdown reaches zero the
// session is force-submitted, once; ticks after submission are no-ops.
func (s *Session) Tick(ctx context.Context) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != model.SessionPhaseInSection {
		return TickResult{RemainingSec: s.countdown.Remaining()}
	}

	fired := s.countdown.Tick()
	res := TickResult{RemainingSec: s.countdown.Remaining()}
	if fired {
		res.Expired = true
		res.Submission = s.finishLocked(ctx, true)
	}
	return res
}

// End completes the session on participant request. Ending an already
// submitted session returns ErrAlreadySubmitted and has no further effect.
func (s *Session) End(ctx context.Context) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInSection(); err != nil {
		return nil, err
	}
	return s.finishLocked(ctx, false), nil
}

// Summary recomputes the live score summary for progress display.
func (s *Session) Summary() *scoring.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scoring.Summarize(s.questions, s.answers, s.cfg.MinCategoryAnswers)
}

// Snapshot returns the externally visible session state for reload recovery.
func (s *Session) Snapshot() model.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[string]model.AnswerValue, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	snap := model.SessionSnapshot{
		ID:           s.id,
		Phase:        s.phase,
		Profile:      s.profile,
		CurrentPage:  s.page,
		Answers:      answers,
		RemainingSec: s.countdown.Remaining(),
		Clock:        timer.Format(s.countdown.Remaining()),
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		snap.StartedAt = &started
	}
	return snap
}

// Submission returns the finished record, or nil before submission.
func (s *Session) Submission() *model.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission
}

// Phase returns the current state machine phase.
func (s *Session) Phase() model.SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) requireInSection() error {
	switch s.phase {
	case model.SessionPhaseIntro:
		return ErrNotStarted
	case model.SessionPhaseSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

func (s *Session) findQuestion(id string) (model.Question, bool) {
	for _, q := range s.questions {
		if q.ID.String() == id {
			return q, true
		}
	}
	return model.Question{}, false
}

// finishLocked builds the finished-session record, hands it to the store, and
// transitions to Submitted. Callers hold the lock and have already verified
// the session is in section, so the transition happens at most once.
func (s *Session) finishLocked(ctx context.Context, forced bool) *model.Submission {
	now := s.clock()
	sum := scoring.Summarize(s.questions, s.answers, s.cfg.MinCategoryAnswers)

	riasec := make(map[string]int, len(sum.Categories))
	radar := make([]model.RadarPoint, 0, len(sum.Categories))
	for _, c := range sum.Categories {
		riasec[c.Code] = c.Total
		radar = append(radar, model.RadarPoint{Category: c.Code, Score: c.Total})
	}

	sub := &model.Submission{
		ID:               s.id,
		TS:               now,
		Name:             s.profile.Name,
		Email:            s.profile.Email,
		School:           s.profile.School,
		Top3:             sum.Top3,
		RIASEC:           riasec,
		RadarData:        radar,
		AreaPercents:     toAreaPercents(sum.Areas),
		InterestPercents: toAreaPercents(scoring.TopAreas(sum.Areas, len(sum.Areas))),
		Aptitude:         sum.Aptitude,
		DurationSec:      int(now.Sub(s.startedAt).Seconds()),
		RemainingSec:     s.countdown.Remaining(),
		Incomplete:       s.isIncomplete(sum.AnsweredCount, forced),
	}

	s.phase = model.SessionPhaseSubmitted
	s.submission = sub

	if err := s.store.Append(ctx, sub); err != nil {
		// The store is a local queue; a failure here is logged, not fatal to
		// the participant flow.
		s.log.Error().Err(err).Msg("Failed to append submission")
	}

	s.log.Info().
		Bool("forced", forced).
		Bool("incomplete", sub.Incomplete).
		Int("answered", sum.AnsweredCount).
		Int("duration_sec", sub.DurationSec).
		Msg("Session submitted")
	return sub
}

// isIncomplete flags low-coverage records: any submission with an answered
// ratio below the configured percentage, plus every forced submission that
// left questions unanswered.
func (s *Session) isIncomplete(answered int, forced bool) bool {
	total := s.layout.TotalQuestions
	if total == 0 {
		return false
	}
	pct := answered * 100 / total
	if pct < s.cfg.IncompleteMinAnsweredPct {
		return true
	}
	return forced && answered < total
}

func toAreaPercents(areas []scoring.AreaScore) []model.AreaPercent {
	out := make([]model.AreaPercent, 0, len(areas))
	for _, a := range areas {
		out = append(out, model.AreaPercent{Category: a.Category, Area: a.Area, Percent: a.Percent})
	}
	return out
}
