package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/accesscode"
	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
)

// Gate verification errors.
var (
	ErrCodeFormat        = errors.New("code does not match the expected format")
	ErrInvalidAccessCode = errors.New("code is not valid or was already used")
	ErrRotatingDisabled  = errors.New("rotating codes are not configured")
)

// CodeKind tells the caller which code family admitted the participant.
type CodeKind string

const (
	CodeKindRotating CodeKind = "rotating"
	CodeKindOneTime  CodeKind = "one_time"
)

// AccessService implements the entry gate: a rotating time-bucketed code
// derived from a shared seed, plus one-time codes stored in Postgres.
type AccessService struct {
	codeRepo *repository.AccessCodeRepository
	cfg      *config.Config
	now      func() time.Time
	log      zerolog.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(codeRepo *repository.AccessCodeRepository, cfg *config.Config, log zerolog.Logger) *AccessService {
	return &AccessService{
		codeRepo: codeRepo,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "access_service").Logger(),
	}
}

// VerifyGate checks a submitted code. Malformed input is rejected before any
// lookup. A well-formed code is matched against the rotating code for the
// current and the previous bucket (grace for codes read just before a
// rotation), then consumed as a one-time code. One-time consumption is
// atomic: two concurrent submissions of the same code admit only one.
func (s *AccessService) VerifyGate(ctx context.Context, raw string) (CodeKind, error) {
	code := accesscode.Normalize(raw)
	if !accesscode.ValidFormat(code) {
		return "", ErrCodeFormat
	}

	if s.cfg.RotatingSeed != "" {
		for _, offset := range []int{0, -1} {
			if code == accesscode.Rotating(s.cfg.RotatingSeed, s.cfg.RotatingIntervalMinutes, offset, s.now()) {
				return CodeKindRotating, nil
			}
		}
	}

	ok, err := s.codeRepo.Consume(ctx, code)
	if err != nil {
		return "", fmt.Errorf("consume code: %w", err)
	}
	if !ok {
		return "", ErrInvalidAccessCode
	}
	return CodeKindOneTime, nil
}

// RotatingCode describes one rotating code with its validity window.
type RotatingCode struct {
	Code       string    `json:"code"`
	Bucket     int64     `json:"bucket"`
	ValidUntil time.Time `json:"valid_until"`
}

// CurrentRotating returns the rotating code for the current bucket and the
// next one, for the staff display.
func (s *AccessService) CurrentRotating() (current, next *RotatingCode, err error) {
	if s.cfg.RotatingSeed == "" {
		return nil, nil, ErrRotatingDisabled
	}

	interval := s.cfg.RotatingIntervalMinutes
	if interval <= 0 {
		interval = accesscode.DefaultIntervalMinutes
	}
	now := s.now()
	bucketMs := int64(interval) * 60_000

	build := func(offset int) *RotatingCode {
		bucket := accesscode.Bucket(now, interval, offset)
		return &RotatingCode{
			Code:       accesscode.Rotating(s.cfg.RotatingSeed, interval, offset, now),
			Bucket:     bucket,
			ValidUntil: time.UnixMilli((bucket + 1) * bucketMs),
		}
	}
	return build(0), build(1), nil
}

// GenerateBatch issues count one-time codes and stores them.
func (s *AccessService) GenerateBatch(ctx context.Context, count int) ([]model.AccessCode, error) {
	codes, err := accesscode.GenerateRandomCodes(count)
	if err != nil {
		return nil, fmt.Errorf("generate codes: %w", err)
	}

	stored, err := s.codeRepo.InsertBatch(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("store codes: %w", err)
	}

	s.log.Info().Int("requested", count).Int("stored", len(stored)).Msg("One-time codes generated")
	return stored, nil
}

// ListCodes pages through issued one-time codes.
func (s *AccessService) ListCodes(ctx context.Context, page, perPage int, unusedOnly bool) ([]model.AccessCode, int64, error) {
	return s.codeRepo.List(ctx, page, perPage, unusedOnly)
}
