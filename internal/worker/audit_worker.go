package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/config"
	"github.com/licensa/dlexam-backend/internal/model"
)

const (
	AuditBatchSize    = 100
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker drains the Redis audit queue and batch-inserts events into the
// audit_events table. Requests never block on the audit trail; this worker is
// the only writer.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled, then flushes the
// remaining batch before returning.
func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]*model.AuditEvent, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

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
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.AuditEventsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var event model.AuditEvent
			if err := json.Unmarshal([]byte(item[1]), &event); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &event)
		}
	}
}

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*model.AuditEvent) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk audit insert failed, requeueing")
		for _, event := range batch {
			raw, merr := json.Marshal(event)
			if merr != nil {
				continue
			}
			w.rdb.RPush(ctx, config.WorkerKey.AuditEventsQueue, raw)
		}
	}
}

// bulkInsert writes the batch in one statement using UNNEST.
func (w *AuditWorker) bulkInsert(ctx context.Context, batch []*model.AuditEvent) error {
	types := make([]string, len(batch))
	sessionIDs := make([]string, len(batch))
	actorIDs := make([]string, len(batch))
	details := make([]string, len(batch))
	occurredAts := make([]time.Time, len(batch))

	for i, event := range batch {
		types[i] = string(event.Type)
		sessionIDs[i] = event.SessionID
		actorIDs[i] = event.ActorID
		details[i] = event.Detail
		occurredAts[i] = event.OccurredAt
	}

	_, err := w.pool.Exec(ctx,
		`INSERT INTO audit_events (event_type, session_id, actor_id, detail, occurred_at)
		 SELECT * FROM UNNEST($1::text[], $2::text[], $3::text[], $4::text[], $5::timestamptz[])`,
		types, sessionIDs, actorIDs, details, occurredAts)
	return err
}
