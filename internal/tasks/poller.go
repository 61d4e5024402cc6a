package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// DefaultPollInterval is the delay between status fetches of a running job.
const DefaultPollInterval = 600 * time.Millisecond

// StatusFetcher returns one snapshot of a job.
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (*models.Job, error)
}

// Poller tracks a job until it reaches "done" or "error".
type Poller struct {
	api         StatusFetcher
	interval    time.Duration
	maxAttempts int
	logger      *log.Logger
}

// NewPoller creates a poller. An interval <= 0 uses [DefaultPollInterval];
// maxAttempts <= 0 polls without a ceiling.
func NewPoller(api StatusFetcher, interval time.Duration, maxAttempts int, logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Poller{api: api, interval: interval, maxAttempts: maxAttempts, logger: logger}
}

// Poll fetches the job's status until it is terminal and returns the final
// snapshot. onUpdate, when non-nil, sees every snapshot in order, terminal
// included. A job that ends in "error" is returned without an error.
func (p *Poller) Poll(ctx context.Context, jobID string, onUpdate func(*models.Job)) (*models.Job, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: polling job %s", shared.ErrCancelled, jobID)
		}

		job, err := p.api.JobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: polling job %s", shared.ErrCancelled, jobID)
			}
			return nil, fmt.Errorf("%w: job %s: %w", shared.ErrAPIRequest, jobID, err)
		}

		p.logger.Debug("job status", "job", jobID, "status", job.Status, "progress", job.Progress)
		if onUpdate != nil {
			onUpdate(job)
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		if p.maxAttempts > 0 && attempt >= p.maxAttempts {
			return job, fmt.Errorf("%w: job %s still %s after %d polls", shared.ErrTimeout, jobID, job.Status, attempt)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: polling job %s", shared.ErrCancelled, jobID)
		case <-time.After(p.interval):
		}
	}
}

// PollHandle is a running poll started by [Poller.Start].
type PollHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	job *models.Job
	err error
}

// Start polls in a goroutine. Cancel stops it before the next fetch.
func (p *Poller) Start(ctx context.Context, jobID string, onUpdate func(*models.Job)) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	h := &PollHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		h.job, h.err = p.Poll(ctx, jobID, onUpdate)
	}()
	return h
}

// Wait blocks until polling ends.
func (h *PollHandle) Wait() (*models.Job, error) {
	<-h.done
	return h.job, h.err
}

// Done is closed when polling ends.
func (h *PollHandle) Done() <-chan struct{} { return h.done }

// Cancel stops polling. It is safe to call more than once.
func (h *PollHandle) Cancel() {
	h.once.Do(h.cancel)
}
