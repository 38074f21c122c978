package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
)

// ErrSubmissionNotFound is returned when no submission matches the ID.
var ErrSubmissionNotFound = errors.New("submission not found")

// ResultService serves finished-session records to staff.
type ResultService struct {
	submissionRepo *repository.SubmissionRepository
	sessionService *SessionService
	log            zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(submissionRepo *repository.SubmissionRepository, sessionService *SessionService, log zerolog.Logger) *ResultService {
	return &ResultService{
		submissionRepo: submissionRepo,
		sessionService: sessionService,
		log:            log.With().Str("component", "result_service").Logger(),
	}
}

// List pages through submissions, newest first. A corrupt stored collection
// reads as empty rather than blocking the staff view.
func (s *ResultService) List(ctx context.Context, page, perPage int, school *string) ([]model.Submission, int64, error) {
	subs, total, err := s.submissionRepo.List(ctx, page, perPage, school)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list submissions, serving empty result")
		return []model.Submission{}, 0, nil
	}
	if subs == nil {
		subs = []model.Submission{}
	}
	return subs, total, nil
}

// GetByID retrieves one submission.
func (s *ResultService) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}

// DashboardStats aggregates the staff dashboard numbers.
type DashboardStats struct {
	TotalSubmissions      int64          `json:"total_submissions"`
	TodaySubmissions      int64          `json:"today_submissions"`
	IncompleteSubmissions int64          `json:"incomplete_submissions"`
	AvgDurationSec        float64        `json:"avg_duration_sec"`
	TopCategoryCounts     map[string]int `json:"top_category_counts"`
	LiveSessions          int            `json:"live_sessions"`
}

// Dashboard computes the staff overview.
func (s *ResultService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	total, today, incomplete, avgDuration, err := s.submissionRepo.CountStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	counts, err := s.submissionRepo.TopCategoryCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count top categories: %w", err)
	}

	live := 0
	for _, snap := range s.sessionService.ListLive() {
		if snap.Phase == model.SessionPhaseInSection {
			live++
		}
	}

	return &DashboardStats{
		TotalSubmissions:      total,
		TodaySubmissions:      today,
		IncompleteSubmissions: incomplete,
		AvgDurationSec:        avgDuration,
		TopCategoryCounts:     counts,
		LiveSessions:          live,
	}, nil
}
