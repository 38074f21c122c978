package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
)

// ErrBankEmpty is returned when no sections or questions have been loaded.
var ErrBankEmpty = errors.New("question bank is empty")

const bankCacheTTL = 12 * time.Hour

// BankService serves the question bank. The participant-safe payload is
// cached in Redis; Postgres is the source of truth and the cache self-heals
// on miss.
type BankService struct {
	bankRepo *repository.BankRepository
	rdb      *redis.Client
	cfg      *config.Config
	log      zerolog.Logger
}

// NewBankService creates a new BankService.
func NewBankService(bankRepo *repository.BankRepository, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *BankService {
	return &BankService{
		bankRepo: bankRepo,
		rdb:      rdb,
		cfg:      cfg,
		log:      log.With().Str("component", "bank_service").Logger(),
	}
}

// GetBank returns the full bank (grading data included) for the engine.
func (s *BankService) GetBank(ctx context.Context) ([]model.Section, []model.Question, error) {
	sections, err := s.bankRepo.ListSections(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list sections: %w", err)
	}
	questions, err := s.bankRepo.ListQuestions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	if len(sections) == 0 || len(questions) == 0 {
		return nil, nil, ErrBankEmpty
	}
	return sections, questions, nil
}

// GetPayload returns the participant-safe questionnaire. Served from Redis
// when warm; a miss falls through to Postgres and repopulates the cache.
func (s *BankService) GetPayload(ctx context.Context) (*model.BankPayload, error) {
	cacheKey := config.CacheKey.BankPayloadKey()

	cached, err := s.rdb.Get(ctx, cacheKey).Result()
	if err == nil && cached != "" {
		var payload model.BankPayload
		if err := json.Unmarshal([]byte(cached), &payload); err == nil {
			return &payload, nil
		}
		// Corrupt cache entry; rebuild from Postgres.
		s.log.Warn().Msg("corrupt bank payload in cache, rebuilding")
	} else if err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("bank cache read failed, falling back to database")
	}

	payload, err := s.buildPayload(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(payload); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, raw, bankCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("failed to repopulate bank cache")
		}
	}
	return payload, nil
}

// PrewarmCache builds the participant payload into Redis at startup so the
// first participant does not pay the cold-cache cost.
func (s *BankService) PrewarmCache(ctx context.Context) error {
	payload, err := s.buildPayload(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal bank payload: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.BankPayloadKey(), raw, bankCacheTTL).Err(); err != nil {
		return fmt.Errorf("prewarm bank cache: %w", err)
	}
	s.log.Info().Int("sections", len(payload.Sections)).Int("questions", payload.TotalQuestions).Msg("Bank cache prewarmed")
	return nil
}

// ReplaceBank swaps the entire bank and invalidates the cached payload.
func (s *BankService) ReplaceBank(ctx context.Context, sections []model.Section, questions []model.Question) error {
	if err := s.bankRepo.ReplaceBank(ctx, sections, questions); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, config.CacheKey.BankPayloadKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate bank cache")
	}
	return nil
}

func (s *BankService) buildPayload(ctx context.Context) (*model.BankPayload, error) {
	sections, questions, err := s.GetBank(ctx)
	if err != nil {
		return nil, err
	}

	bySection := make(map[string][]model.QuestionForParticipant, len(sections))
	for _, q := range questions {
		key := q.SectionID.String()
		bySection[key] = append(bySection[key], q.ForParticipant())
	}

	payload := &model.BankPayload{
		Sections:        make([]model.BankSection, 0, len(sections)),
		TotalQuestions:  len(questions),
		DurationMinutes: s.cfg.DurationMinutes,
	}
	for _, sec := range sections {
		payload.Sections = append(payload.Sections, model.BankSection{
			Section:   sec,
			Questions: bySection[sec.ID.String()],
		})
	}
	return payload, nil
}
