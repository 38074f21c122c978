package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/engine"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
	"github.com/emergency0committee-hub/eec-backend/internal/scoring"
)

// ErrSessionNotFound is returned when a session ID is neither live in memory
// nor recoverable from the cache.
var ErrSessionNotFound = errors.New("session not found")

// Session cache entries outlive the assessment itself so a reload shortly
// after the window closes can still recover.
const sessionStateTTL = 24 * time.Hour

// Submitted sessions are kept in memory so the summary page keeps working,
// then pruned.
const submittedRetention = time.Hour

// SessionService owns the set of live assessment sessions. The engine holds
// authoritative state in memory; Redis mirrors it for reload recovery, and
// workers drain answer/submission queues into Postgres.
type SessionService struct {
	cfg        *config.Config
	bank       *BankService
	answerRepo *repository.SessionAnswerRepository
	queue      *SubmissionQueue
	rdb        *redis.Client
	log        zerolog.Logger

	mu          sync.RWMutex
	sessions    map[uuid.UUID]*engine.Session
	subscribers map[uuid.UUID]map[chan engine.TickResult]struct{}
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	bank *BankService,
	answerRepo *repository.SessionAnswerRepository,
	queue *SubmissionQueue,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		cfg:         cfg,
		bank:        bank,
		answerRepo:  answerRepo,
		queue:       queue,
		rdb:         rdb,
		log:         log.With().Str("component", "session_service").Logger(),
		sessions:    make(map[uuid.UUID]*engine.Session),
		subscribers: make(map[uuid.UUID]map[chan engine.TickResult]struct{}),
	}
}

func (s *SessionService) engineConfig() engine.Config {
	return engine.Config{
		DurationSec:              s.cfg.DurationMinutes * 60,
		MinCategoryAnswers:       s.cfg.MinCategoryAnswers,
		IncompleteMinAnsweredPct: s.cfg.IncompleteMinAnsweredPct,
	}
}

// Create builds a fresh session over the current bank and registers it.
// Called after the access gate admits a participant.
func (s *SessionService) Create(ctx context.Context) (*engine.Session, error) {
	sections, questions, err := s.bank.GetBank(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	sess := engine.New(id, sections, questions, s.engineConfig(), s.queue, s.log)

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info().Str("session_id", id.String()).Msg("Session created")
	return sess, nil
}

// Get returns a live session, recovering it from the cache after a process
// restart if needed.
func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*engine.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess, nil
	}
	return s.recover(ctx, id)
}

// Start validates the profile and begins the countdown. The profile and
// start time are mirrored to Redis for reload recovery.
func (s *SessionService) Start(ctx context.Context, id uuid.UUID, profile model.Profile) (map[string]string, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := sess.Start(profile)
	if err != nil {
		return fields, err
	}

	sid := id.String()
	snap := sess.Snapshot()
	if raw, mErr := json.Marshal(profile); mErr == nil {
		if cErr := s.rdb.Set(ctx, config.CacheKey.SessionProfileKey(sid), raw, sessionStateTTL).Err(); cErr != nil {
			s.log.Warn().Err(cErr).Msg("failed to mirror profile")
		}
	}
	startedAt := time.Now()
	if snap.StartedAt != nil {
		startedAt = *snap.StartedAt
	}
	if cErr := s.rdb.Set(ctx, config.CacheKey.SessionStartKey(sid),
		strconv.FormatInt(startedAt.UnixMilli(), 10), sessionStateTTL).Err(); cErr != nil {
		s.log.Warn().Err(cErr).Msg("failed to mirror start time")
	}
	s.setPageMirror(ctx, sid, snap.CurrentPage)

	return nil, nil
}

// RecordAnswer merges one answer, mirrors it to the Redis answer hash, and
// queues the Postgres upsert for the autosave worker.
func (s *SessionService) RecordAnswer(ctx context.Context, id uuid.UUID, questionID string, value model.AnswerValue) (*scoring.Summary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	sum, err := sess.RecordAnswer(questionID, value)
	if err != nil {
		return nil, err
	}

	sid := id.String()
	raw, mErr := json.Marshal(value)
	if mErr == nil {
		if cErr := s.rdb.HSet(ctx, config.CacheKey.SessionAnswersKey(sid), questionID, raw).Err(); cErr != nil {
			s.log.Warn().Err(cErr).Msg("failed to mirror answer")
		}

		job, jErr := json.Marshal(repository.AnswerRow{SessionID: sid, QuestionID: questionID, Answer: value})
		if jErr == nil {
			if qErr := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, job).Err(); qErr != nil {
				s.log.Warn().Err(qErr).Msg("failed to queue answer persist")
			}
		}
	}

	return sum, nil
}

// Navigate applies a next/prev/jump action and returns the new page.
func (s *SessionService) Navigate(ctx context.Context, id uuid.UUID, action string, page int) (int, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}

	var newPage int
	switch action {
	case "next":
		newPage, err = sess.Next()
	case "prev":
		newPage, err = sess.Prev()
	case "jump":
		newPage, err = sess.Jump(page)
	default:
		return 0, fmt.Errorf("unknown navigation action %q", action)
	}
	if err != nil {
		return newPage, err
	}

	s.setPageMirror(ctx, id.String(), newPage)
	return newPage, nil
}

// End submits the session on participant request.
func (s *SessionService) End(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.End(ctx)
}

// Snapshot returns the reload-recovery view of a session.
func (s *SessionService) Snapshot(ctx context.Context, id uuid.UUID) (model.SessionSnapshot, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return model.SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Summary returns the live score summary of a session.
func (s *SessionService) Summary(ctx context.Context, id uuid.UUID) (*scoring.Summary, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Summary(), nil
}

// ListLive snapshots every in-memory session for the staff monitor.
func (s *SessionService) ListLive() []model.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := make([]model.SessionSnapshot, 0, len(s.sessions))
	for _, sess := range s.sessions {
		snaps = append(snaps, sess.Snapshot())
	}
	return snaps
}

// Subscribe registers a tick listener for one session. The returned cancel
// func must be called when the listener goes away. Slow listeners drop ticks
// rather than blocking the ticker.
func (s *SessionService) Subscribe(id uuid.UUID) (<-chan engine.TickResult, func()) {
	ch := make(chan engine.TickResult, 4)

	s.mu.Lock()
	subs, ok := s.subscribers[id]
	if !ok {
		subs = make(map[chan engine.TickResult]struct{})
		s.subscribers[id] = subs
	}
	subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if subs, ok := s.subscribers[id]; ok {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(s.subscribers, id)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// RunTicker drives every live session's countdown at one tick per second
// until ctx is done. Expiry force-submits inside the tick; subscribers get
// the result on the same beat.
func (s *SessionService) RunTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	s.log.Info().Msg("Session ticker started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Session ticker stopped")
			return
		case <-ticker.C:
			s.tickAll(ctx)
		}
	}
}

func (s *SessionService) tickAll(ctx context.Context) {
	s.mu.RLock()
	live := make(map[uuid.UUID]*engine.Session, len(s.sessions))
	for id, sess := range s.sessions {
		live[id] = sess
	}
	s.mu.RUnlock()

	now := time.Now()
	var prune []uuid.UUID

	for id, sess := range live {
		switch sess.Phase() {
		case model.SessionPhaseInSection:
			res := sess.Tick(ctx)
			s.broadcast(id, res)
			if res.Expired {
				s.log.Info().Str("session_id", id.String()).Msg("Session force-submitted on expiry")
			}
		case model.SessionPhaseSubmitted:
			if sub := sess.Submission(); sub != nil && now.Sub(sub.TS) > submittedRetention {
				prune = append(prune, id)
			}
		}
	}

	if len(prune) > 0 {
		s.mu.Lock()
		for _, id := range prune {
			delete(s.sessions, id)
		}
		s.mu.Unlock()
	}
}

func (s *SessionService) broadcast(id uuid.UUID, res engine.TickResult) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers[id] {
		select {
		case ch <- res:
		default: // Listener is behind; skip this tick.
		}
	}
}

// recover rebuilds a session from its Redis mirror after a process restart.
// Answers fall back to the Postgres autosave table when the Redis hash is
// gone. A session with no mirrored start time is unrecoverable.
func (s *SessionService) recover(ctx context.Context, id uuid.UUID) (*engine.Session, error) {
	sid := id.String()

	startRaw, err := s.rdb.Get(ctx, config.CacheKey.SessionStartKey(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session start: %w", err)
	}
	startMs, err := strconv.ParseInt(startRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt session start %q: %w", startRaw, err)
	}
	startedAt := time.UnixMilli(startMs)

	var profile model.Profile
	profRaw, err := s.rdb.Get(ctx, config.CacheKey.SessionProfileKey(sid)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read session profile: %w", err)
	}
	if profRaw != "" {
		if err := json.Unmarshal([]byte(profRaw), &profile); err != nil {
			s.log.Warn().Str("session_id", sid).Msg("corrupt mirrored profile, continuing without it")
		}
	}

	answers := s.recoverAnswers(ctx, sid)

	page := 0
	if pageRaw, err := s.rdb.Get(ctx, config.CacheKey.SessionPageKey(sid)).Result(); err == nil {
		if p, pErr := strconv.Atoi(pageRaw); pErr == nil {
			page = p
		}
	}

	sections, questions, err := s.bank.GetBank(ctx)
	if err != nil {
		return nil, err
	}

	remaining := s.cfg.DurationMinutes*60 - int(time.Since(startedAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}

	sess := engine.New(id, sections, questions, s.engineConfig(), s.queue, s.log)
	if err := sess.Restore(profile, answers, page, startedAt, remaining); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	// Another request may have recovered it concurrently; keep the first.
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info().Str("session_id", sid).Int("answers", len(answers)).Int("remaining_sec", remaining).Msg("Session recovered")
	return sess, nil
}

func (s *SessionService) recoverAnswers(ctx context.Context, sid string) map[string]model.AnswerValue {
	answers := make(map[string]model.AnswerValue)

	hash, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(sid)).Result()
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read mirrored answers")
	}
	for qid, raw := range hash {
		var v model.AnswerValue
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			continue
		}
		answers[qid] = v
	}
	if len(answers) > 0 {
		return answers
	}

	persisted, err := s.answerRepo.ListBySession(ctx, sid)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to read persisted answers")
		return answers
	}
	return persisted
}

func (s *SessionService) setPageMirror(ctx context.Context, sid string, page int) {
	if err := s.rdb.Set(ctx, config.CacheKey.SessionPageKey(sid), page, sessionStateTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to mirror page")
	}
}
