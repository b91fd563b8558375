package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueueComprobante = "jobs:comprobante"

// Job types.
const JobComprobante = "comprobante"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueComprobante asks the pool to render the receipt of a committed sale.
func (d *Dispatcher) EnqueueComprobante(ctx context.Context, boletaID uint) error {
	return d.enqueue(ctx, QueueComprobante, JobComprobante, ComprobanteJobPayload{BoletaID: boletaID})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

func encodeJob(jobType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// JobHandler processes one job payload. A returned error parks the job in the dead-letter list.
type JobHandler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

var ErrUnknownJob = errors.New("unknown job type")

// Pool runs numWorkers goroutines consuming the registered queues.
type Pool struct {
	rdb        *redis.Client
	numWorkers int
	handlers   map[string]JobHandler
	queues     []string
	popBackoff time.Duration
	wg         sync.WaitGroup
}

func NewPool(rdb *redis.Client, numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Pool{
		rdb:        rdb,
		numWorkers: numWorkers,
		handlers:   make(map[string]JobHandler),
		popBackoff: time.Second,
	}
}

// Handle registers h for jobs of jobType arriving on queue.
func (p *Pool) Handle(queue, jobType string, h JobHandler) {
	p.handlers[jobType] = h
	for _, q := range p.queues {
		if q == queue {
			return
		}
	}
	p.queues = append(p.queues, queue)
}

// Start launches the workers. Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", p.numWorkers)
}

// Wait blocks until every worker returned after ctx was cancelled.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				if !p.awaitAfterPopError(ctx, id, err) {
					return
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			queue, raw := result[0], result[1]
			if job, err := p.process(ctx, raw); err != nil {
				p.park(ctx, queue, job, err)
			}
		}
	}
}

// awaitAfterPopError decides what a worker does after a failed BRPOP. An empty
// pop (redis.Nil) loops at once; any other error waits popBackoff so a down
// Redis is not hammered. It returns false once ctx is done.
func (p *Pool) awaitAfterPopError(ctx context.Context, id int, err error) bool {
	if ctx.Err() != nil {
		log.Info().Msgf("worker %d shutting down", id)
		return false
	}
	if errors.Is(err, redis.Nil) {
		return true
	}
	log.Warn().Err(err).Int("worker", id).Dur("backoff", p.popBackoff).Msg("redis pop failed")
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.popBackoff):
		return true
	}
}

// process decodes one raw job and runs its handler.
func (p *Pool) process(ctx context.Context, raw string) (Job, error) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job")
		return Job{Type: "invalid", Payload: json.RawMessage(`null`)}, err
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		return job, fmt.Errorf("%w: %s", ErrUnknownJob, job.Type)
	}
	log.Debug().Str("type", job.Type).Msg("processing job")
	return job, h.Process(ctx, job.Payload)
}
