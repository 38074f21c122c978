package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
)

const (
	SubmissionBatchSize    = 50
	SubmissionBatchTimeout = 2 * time.Second
	SubmissionPollTimeout  = 1 * time.Second
)

// SubmissionWorker drains the submission queue into PostgreSQL in batches.
// Once a batch lands, the matching autosave mirrors are cleared.
type SubmissionWorker struct {
	submissionRepo *repository.SubmissionRepository
	answerRepo     *repository.SessionAnswerRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewSubmissionWorker creates a new SubmissionWorker.
func NewSubmissionWorker(
	submissionRepo *repository.SubmissionRepository,
	answerRepo *repository.SessionAnswerRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *SubmissionWorker {
	return &SubmissionWorker{
		submissionRepo: submissionRepo,
		answerRepo:     answerRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "submission_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *SubmissionWorker) Start(ctx context.Context) {
	w.log.Info().Msg("SubmissionWorker started")

	batch := make([]*model.Submission, 0, SubmissionBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= SubmissionBatchSize || time.Since(lastFlush) >= SubmissionBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			w.drain(context.Background())
			return

		default:
			item, err := w.rdb.BLPop(ctx, SubmissionPollTimeout, config.WorkerKey.PersistSubmissionsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var sub model.Submission
			if err := json.Unmarshal([]byte(item[1]), &sub); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &sub)
		}
	}
}

func (w *SubmissionWorker) flushSafe(ctx context.Context, batch []*model.Submission) {
	if len(batch) == 0 {
		return
	}

	if err := w.submissionRepo.BulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk submission insert failed, using fallback")

		for _, sub := range batch {
			if err := w.submissionRepo.Create(ctx, sub); err != nil {
				w.log.Error().Err(err).Str("submission_id", sub.ID.String()).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(sub)
				w.rdb.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, raw)
			}
		}
		return
	}

	w.log.Info().Int("count", len(batch)).Msg("Submission batch persisted")
	w.clearSessionState(ctx, batch)
}

// clearSessionState removes the autosave mirrors of persisted sessions. The
// submission is now the durable record; the working state is noise.
func (w *SubmissionWorker) clearSessionState(ctx context.Context, batch []*model.Submission) {
	pipe := w.rdb.Pipeline()
	for _, sub := range batch {
		sid := sub.ID.String()
		pipe.Del(ctx,
			config.CacheKey.SessionAnswersKey(sid),
			config.CacheKey.SessionPageKey(sid),
		)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Msg("failed to clear session mirrors")
	}

	for _, sub := range batch {
		if err := w.answerRepo.DeleteBySession(ctx, sub.ID.String()); err != nil {
			w.log.Warn().Err(err).Str("submission_id", sub.ID.String()).Msg("failed to clear persisted answers")
		}
	}
}

// drain empties whatever is left on the queue before shutdown.
func (w *SubmissionWorker) drain(ctx context.Context) {
	drained := 0
	for {
		item, err := w.rdb.LPop(ctx, config.WorkerKey.PersistSubmissionsQueue).Result()
		if err != nil {
			break
		}

		var sub model.Submission
		if err := json.Unmarshal([]byte(item), &sub); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.submissionRepo.Create(ctx, &sub); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistSubmissionsQueue, item)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining submissions")
	}
}
