package queue

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/madunda/task-manager-api/internal/api/metrics"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher delivers mail jobs through a fixed worker pool. Enqueue never
// blocks the request path: when the buffer is full the job is dropped and
// logged. Delivery failures are logged and swallowed, never surfaced to the
// caller that triggered the mail.
type Dispatcher struct {
	jobs     chan ports.MailJob
	notifier ports.Notifier
	workers  int
	draining atomic.Bool
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers delivery workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	return &Dispatcher{
		jobs:     make(chan ports.MailJob, channelBuffer),
		notifier: notifier,
		workers:  numWorkers,
		log:      log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled,
// and the dispatcher flips into a draining state so later Enqueue calls are
// counted as drops instead of piling into a buffer nobody reads.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		go d.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		d.draining.Store(true)
	}()
}

// Enqueue submits a job for delivery without waiting for it.
func (d *Dispatcher) Enqueue(job ports.MailJob) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	if d.draining.Load() {
		metrics.MailJobsTotal.WithLabelValues(string(job.Kind), "dropped").Inc()
		d.log.Warn().
			Str("job_id", job.ID).
			Str("kind", string(job.Kind)).
			Msg("dispatcher draining, job dropped")
		return
	}

	select {
	case d.jobs <- job:
	default:
		metrics.MailJobsTotal.WithLabelValues(string(job.Kind), "dropped").Inc()
		d.log.Warn().
			Str("job_id", job.ID).
			Str("kind", string(job.Kind)).
			Msg("mail queue full, job dropped")
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-d.jobs:
			if !ok {
				return
			}
			if err := d.notifier.Send(ctx, job); err != nil {
				metrics.MailJobsTotal.WithLabelValues(string(job.Kind), "failed").Inc()
				d.log.Error().Err(err).
					Str("job_id", job.ID).
					Str("kind", string(job.Kind)).
					Int("worker_id", id).
					Msg("mail delivery failed")
				continue
			}
			metrics.MailJobsTotal.WithLabelValues(string(job.Kind), "delivered").Inc()
		}
	}
}
