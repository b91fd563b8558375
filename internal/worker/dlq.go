package worker

// Receipt jobs that still fail after their in-job retries are parked on
// "dlq:" + queue, newest first, so a clerk can reprint them from the boleta id.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const deadLetterPrefix = "dlq:"

// FailedJob is one parked job.
type FailedJob struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	BoletaID uint            `json:"boleta_id,omitempty"`
	Payload  json.RawMessage `json:"payload"`
	Error    string          `json:"error"`
	FailedAt time.Time       `json:"failed_at"`
}

func newFailedJob(queue string, job Job, cause error, now time.Time) FailedJob {
	f := FailedJob{
		Queue:    queue,
		Type:     job.Type,
		Payload:  job.Payload,
		Error:    cause.Error(),
		FailedAt: now.UTC(),
	}
	if job.Type == JobComprobante {
		var p ComprobanteJobPayload
		if json.Unmarshal(job.Payload, &p) == nil {
			f.BoletaID = p.BoletaID
		}
	}
	return f
}

// park pushes a failed job onto its dead-letter list. A Redis failure here is
// only logged; the sale itself is already committed.
func (p *Pool) park(ctx context.Context, queue string, job Job, cause error) {
	f := newFailedJob(queue, job, cause, time.Now())
	data, err := json.Marshal(f)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("could not encode failed job")
		return
	}
	if err := p.rdb.LPush(ctx, deadLetterPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Uint("boleta_id", f.BoletaID).Msg("could not park failed job")
		return
	}
	log.Warn().
		Str("job_type", f.Type).
		Uint("boleta_id", f.BoletaID).
		Str("error", f.Error).
		Msg("job parked in dead-letter list")
}

// FailedJobs counts the parked jobs of queue, for /health.
func FailedJobs(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, deadLetterPrefix+queue).Result()
}
