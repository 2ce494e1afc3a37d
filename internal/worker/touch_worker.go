package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/config"
)

const (
	TouchBatchSize    = 100
	TouchBatchTimeout = 2 * time.Second
	TouchPollTimeout  = 1 * time.Second
)

// TouchWorker drains the session-touch queue and batches last_activity
// updates into single round trips. Touches are lossy on purpose: a dropped
// update only shortens the observed idle window, never extends it.
type TouchWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewTouchWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *TouchWorker {
	return &TouchWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "touch_worker").Logger(),
	}
}

type touchPayload struct {
	SessionID int       `json:"session_id"`
	At        time.Time `json:"at"`
}

func (w *TouchWorker) Start(ctx context.Context) {
	w.log.Info().Msg("TouchWorker started")

	batch := make([]*touchPayload, 0, TouchBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= TouchBatchSize || time.Since(lastFlush) >= TouchBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, TouchPollTimeout, config.WorkerKey.TouchSessionsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p touchPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &p)
		}
	}
}

func (w *TouchWorker) flushSafe(ctx context.Context, batch []*touchPayload) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkTouch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk touch failed, dropping batch")
	}
}

// bulkTouch moves last_activity forward for every session in the batch.
// GREATEST keeps a late-arriving touch from rewinding a newer timestamp.
func (w *TouchWorker) bulkTouch(ctx context.Context, batch []*touchPayload) error {
	n := len(batch)

	sessionIDs := make([]int, 0, n)
	touchedAts := make([]time.Time, 0, n)
	for _, p := range batch {
		sessionIDs = append(sessionIDs, p.SessionID)
		touchedAts = append(touchedAts, p.At)
	}

	query := `
		UPDATE sessions AS s
		SET last_activity = GREATEST(s.last_activity, t.touched_at)
		FROM (
			SELECT u.session_id, u.touched_at
			FROM UNNEST(
				$1::int[],
				$2::timestamptz[]
			) AS u (session_id, touched_at)
		) AS t
		WHERE s.id = t.session_id
		  AND s.active = TRUE
	`

	_, err := w.pool.Exec(ctx, query, sessionIDs, touchedAts)
	return err
}
