package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/config"
	"github.com/emergency0committee-hub/eec-backend/internal/repository"
)

const (
	AnswerBatchSize    = 100
	AnswerBatchTimeout = 2 * time.Second
	AnswerPollTimeout  = 1 * time.Second
)

// AutosaveWorker consumes the answer queue and UPSERTs autosaved answers to
// PostgreSQL in batches, so in-flight sessions survive a cache flush.
type AutosaveWorker struct {
	answerRepo *repository.SessionAnswerRepository
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewAutosaveWorker creates a new AutosaveWorker.
func NewAutosaveWorker(answerRepo *repository.SessionAnswerRepository, rdb *redis.Client, log zerolog.Logger) *AutosaveWorker {
	return &AutosaveWorker{
		answerRepo: answerRepo,
		rdb:        rdb,
		log:        log.With().Str("component", "autosave_worker").Logger(),
	}
}

// Start begins the worker loop with batching. Call in a goroutine.
func (w *AutosaveWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AutosaveWorker started")

	batch := make([]repository.AnswerRow, 0, AnswerBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= AnswerBatchSize || time.Since(lastFlush) >= AnswerBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AnswerPollTimeout, config.WorkerKey.PersistAnswersQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var row repository.AnswerRow
			if err := json.Unmarshal([]byte(item[1]), &row); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, row)
		}
	}
}

func (w *AutosaveWorker) flushSafe(ctx context.Context, batch []repository.AnswerRow) {
	if len(batch) == 0 {
		return
	}

	if err := w.answerRepo.BulkUpsert(ctx, batch); err != nil {
		w.log.Error().Err(err).Int("count", len(batch)).Msg("answer upsert failed, requeueing batch")
		for _, row := range batch {
			raw, _ := json.Marshal(row)
			w.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, raw)
		}
		// Back off before hammering the database again.
		time.Sleep(5 * time.Second)
	}
}
