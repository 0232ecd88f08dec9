package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/examhall/examhall-backend/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// ViolationWorker drains the proctoring-violation queue from Redis and
// batch-inserts the events into Postgres. Violations are observed at
// interactive rates during a sitting, so they never hit the database on
// the request path.
type ViolationWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewViolationWorker creates a new ViolationWorker.
func NewViolationWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *ViolationWorker {
	return &ViolationWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "violation_worker").Logger(),
	}
}

// ViolationPayload is the queued form of one proctoring event.
type ViolationPayload struct {
	ExamID    string `json:"exam_id"`
	StudentID string `json:"student_id"`
	Kind      string `json:"kind"`
	Count     int    `json:"count"`
	Timestamp int64  `json:"timestamp"`
}

// Start runs the drain loop until ctx is cancelled.
func (w *ViolationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ViolationWorker started")

	buffer := make([]*ViolationPayload, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// Flush on size or age.
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// BLPop blocks for PollTimeout; returns immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistViolationsQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // Queue empty, loop back to check flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload ViolationPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *ViolationWorker) flushSafe(ctx context.Context, batch []*ViolationPayload) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *ViolationWorker) bulkInsert(ctx context.Context, batch []*ViolationPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		examID, err := uuid.Parse(p.ExamID)
		if err != nil {
			// Trigger the fallback, which handles the bad UUID individually.
			return err
		}
		studentID, err := uuid.Parse(p.StudentID)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			examID, studentID, p.Kind, p.Count, time.Unix(p.Timestamp, 0),
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"proctor_events"},
		[]string{"exam_id", "student_id", "kind", "violation_count", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *ViolationWorker) fallbackInsert(ctx context.Context, batch []*ViolationPayload) {
	requeueList := make([]*ViolationPayload, 0)

	for _, p := range batch {
		examID, err := uuid.Parse(p.ExamID)
		if err != nil {
			w.log.Error().Str("exam_id", p.ExamID).Msg("Dropping violation with invalid exam UUID")
			continue
		}
		studentID, err := uuid.Parse(p.StudentID)
		if err != nil {
			w.log.Error().Str("student_id", p.StudentID).Msg("Dropping violation with invalid student UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO proctor_events (exam_id, student_id, kind, violation_count, recorded_at)
             VALUES ($1, $2, $3, $4, $5)`,
			examID, studentID, p.Kind, p.Count, time.Unix(p.Timestamp, 0),
		)
		if err != nil {
			// Requeue anything that fails the insert so DB outages do not
			// drop proctoring evidence.
			w.log.Error().Err(err).Str("student_id", p.StudentID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *ViolationWorker) requeue(ctx context.Context, items []*ViolationPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistViolationsQueue, data)
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
	} else {
		w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
		// Avoid thrashing if the DB is down hard.
		time.Sleep(2 * time.Second)
	}
}

func (w *ViolationWorker) shutdown(buffer []*ViolationPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
