package tasks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
	tu "github.com/desertthunder/songsmith/internal/testing"
)

func quietLogger() *strings.Builder { return &strings.Builder{} }

func newTestPoller(src StatusFetcher, maxAttempts int) *Poller {
	return NewPoller(src, time.Millisecond, maxAttempts, shared.NewLogger(quietLogger()))
}

func TestPoll(t *testing.T) {
	ctx := context.Background()

	t.Run("stops at done and reports every snapshot", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{
			{Status: models.JobPending, Progress: 0, Message: "queued"},
			{Status: models.JobRunning, Progress: 40, Message: "working"},
			{Status: models.JobDone, Progress: 100, Message: "finished"},
			{Status: models.JobRunning, Progress: 1, Message: "never fetched"},
		}}

		var seen []string
		job, err := newTestPoller(src, 0).Poll(ctx, "job-1", func(j *models.Job) {
			seen = append(seen, j.StatusLine())
		})
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if job.Status != models.JobDone || job.ID != "job-1" {
			t.Errorf("unexpected final job %+v", job)
		}
		want := []string{"0% - queued", "40% - working", "100% - finished"}
		if strings.Join(seen, "|") != strings.Join(want, "|") {
			t.Errorf("got updates %v, want %v", seen, want)
		}
		if src.Calls() != 3 {
			t.Errorf("expected 3 fetches, got %d", src.Calls())
		}
	})

	t.Run("error status is terminal without an error", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{
			{Status: models.JobRunning, Progress: 10, Message: "working"},
			{Status: models.JobError, Progress: 10, Message: "out of memory"},
		}}
		job, err := newTestPoller(src, 0).Poll(ctx, "job-2", nil)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if job.Status != models.JobError || job.Message != "out of memory" {
			t.Errorf("unexpected job %+v", job)
		}
	})

	t.Run("unknown statuses keep polling", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{
			{Status: "queued-for-gpu"},
			{Status: models.JobDone, Progress: 100},
		}}
		if _, err := newTestPoller(src, 0).Poll(ctx, "job-3", nil); err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if src.Calls() != 2 {
			t.Errorf("expected 2 fetches, got %d", src.Calls())
		}
	})

	t.Run("fetch error aborts without retry", func(t *testing.T) {
		src := &tu.StatusSource{
			Script: []models.Job{{Status: models.JobRunning}},
			Err:    errors.New("connection refused"),
			ErrAt:  1,
		}
		_, err := newTestPoller(src, 0).Poll(ctx, "job-4", nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected cause in error, got %v", err)
		}
		if src.Calls() != 2 {
			t.Errorf("expected 2 fetches, got %d", src.Calls())
		}
	})

	t.Run("attempt ceiling", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{{Status: models.JobRunning, Progress: 5}}}
		job, err := newTestPoller(src, 3).Poll(ctx, "job-5", nil)
		if !errors.Is(err, shared.ErrTimeout) {
			t.Fatalf("expected ErrTimeout, got %v", err)
		}
		if job == nil || job.Status != models.JobRunning {
			t.Errorf("expected last snapshot, got %+v", job)
		}
		if src.Calls() != 3 {
			t.Errorf("expected 3 fetches, got %d", src.Calls())
		}
	})

	t.Run("cancelled context fetches nothing", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{{Status: models.JobDone}}}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := newTestPoller(src, 0).Poll(cctx, "job-6", nil)
		if !errors.Is(err, shared.ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		if src.Calls() != 0 {
			t.Errorf("expected no fetches, got %d", src.Calls())
		}
	})

	t.Run("default interval", func(t *testing.T) {
		p := NewPoller(&tu.StatusSource{}, 0, 0, nil)
		if p.interval != DefaultPollInterval {
			t.Errorf("expected %v, got %v", DefaultPollInterval, p.interval)
		}
	})
}

func TestPollHandle(t *testing.T) {
	t.Run("Wait returns the final job", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{
			{Status: models.JobRunning},
			{Status: models.JobDone, Progress: 100},
		}}
		h := newTestPoller(src, 0).Start(context.Background(), "job-1", nil)
		job, err := h.Wait()
		if err != nil || job.Status != models.JobDone {
			t.Fatalf("unexpected result %+v %v", job, err)
		}
		select {
		case <-h.Done():
		default:
			t.Error("Done should be closed after Wait")
		}
	})

	t.Run("Cancel stops further fetches", func(t *testing.T) {
		src := &tu.StatusSource{Script: []models.Job{{Status: models.JobRunning}}}
		p := NewPoller(src, 20*time.Millisecond, 0, shared.NewLogger(quietLogger()))

		first := make(chan struct{}, 1)
		h := p.Start(context.Background(), "job-2", func(*models.Job) {
			select {
			case first <- struct{}{}:
			default:
			}
		})
		<-first
		h.Cancel()
		h.Cancel()

		_, err := h.Wait()
		if !errors.Is(err, shared.ErrCancelled) {
			t.Fatalf("expected ErrCancelled, got %v", err)
		}
		calls := src.Calls()
		time.Sleep(50 * time.Millisecond)
		if src.Calls() != calls {
			t.Errorf("fetches continued after cancel: %d -> %d", calls, src.Calls())
		}
	})
}
