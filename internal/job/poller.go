package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/szaher/saleor-cli/internal/clierr"
	"github.com/szaher/saleor-cli/internal/progress"
)

// Defaults applied to zero-valued Poller fields.
const (
	DefaultInterval   = 3 * time.Second
	DefaultMaxRetries = 3
)

// StatusFetcher returns the current state of a job.
type StatusFetcher interface {
	FetchJob(ctx context.Context, id string) (*Job, error)
}

// FetcherFunc adapts a function to StatusFetcher.
type FetcherFunc func(ctx context.Context, id string) (*Job, error)

// FetchJob calls f.
func (f FetcherFunc) FetchJob(ctx context.Context, id string) (*Job, error) { return f(ctx, id) }

// Labels are the human-readable texts shown while waiting.
type Labels struct {
	InProgress string
	Success    string
}

// Poller waits for a job to reach a terminal state by checking its status
// on a fixed interval. Only one job is polled per Wait call.
type Poller struct {
	Fetcher StatusFetcher

	// Interval between status checks. The first check is immediate.
	Interval time.Duration

	// MaxWait bounds the whole wait; zero means wait until the job ends
	// or the context is cancelled.
	MaxWait time.Duration

	// MaxRetries is how many consecutive connectivity failures are
	// tolerated before giving up. Negative disables retries.
	MaxRetries int

	Progress progress.Indicator
	Logger   *slog.Logger
}

// Wait polls job id until it succeeds, fails, times out, or ctx is
// cancelled. Cancelling ctx only stops the client; the server-side job
// keeps running.
//
// Outcomes:
//   - SUCCEEDED: the final job and nil.
//   - FAILED: the final job and a *FailedError.
//   - MaxWait elapsed: nil and a *TimeoutError.
//   - status checks unreachable: nil and a *ConnectivityError.
//   - ctx cancelled: nil and an interrupted clierr.Error wrapping ctx.Err().
func (p *Poller) Wait(ctx context.Context, id string, labels Labels) (*Job, error) {
	if id == "" {
		return nil, clierr.Validation("job id is required")
	}
	if p.Fetcher == nil {
		return nil, errors.New("poller has no status fetcher")
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxRetries := p.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	ind := p.Progress
	if ind == nil {
		ind = progress.Nop{}
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("job_id", id)

	waitCtx := ctx
	if p.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.MaxWait)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	var highest Status
	failures := 0

	ind.Start(labels.InProgress)

	for checks := 1; ; checks++ {
		j, err := p.Fetcher.FetchJob(waitCtx, id)
		switch {
		case err != nil:
			if stopErr := stopped(ctx, waitCtx, id, time.Since(start), highest); stopErr != nil {
				ind.Fail(failLabel(labels, stopErr))
				return nil, stopErr
			}
			if clierr.CategoryOf(err) != clierr.CategoryConnectivity {
				ind.Fail(labels.InProgress + " (status check failed)")
				return nil, fmt.Errorf("checking job %s: %w", id, err)
			}
			failures++
			if failures > maxRetries {
				ind.Fail(labels.InProgress + " (server unreachable)")
				return nil, &ConnectivityError{ID: id, Attempts: failures, Err: err}
			}
			logger.Warn("job status check failed, retrying", "attempt", failures, "error", err)

		case j == nil:
			ind.Fail(labels.InProgress + " (status check failed)")
			return nil, clierr.Configuration("job %s: empty status response", id)

		default:
			failures = 0
			if j.Status.rank() < highest.rank() {
				logger.Debug("ignoring status regression", "observed", j.Status, "previous", highest)
				j.Status = highest
			}
			highest = j.Status
			logger.Debug("job status", "status", j.Status, "check", checks)

			switch j.Status {
			case StatusSucceeded:
				ind.Succeed(labels.Success)
				return j, nil
			case StatusFailed:
				fe := &FailedError{Job: j}
				ind.Fail(fe.Error())
				return j, fe
			default:
				ind.Update(fmt.Sprintf("%s (%s)", labels.InProgress, strings.ToLower(string(j.Status))))
			}
		}

		select {
		case <-waitCtx.Done():
			stopErr := stopped(ctx, waitCtx, id, time.Since(start), highest)
			ind.Fail(failLabel(labels, stopErr))
			return nil, stopErr
		case <-ticker.C:
		}
	}
}

// stopped returns the error for a wait that ended because of the caller's
// context or the MaxWait deadline, or nil when neither fired.
func stopped(parent, waitCtx context.Context, id string, waited time.Duration, last Status) error {
	if err := parent.Err(); err != nil {
		return &clierr.Error{
			Kind: clierr.CategoryInterrupted,
			Err:  fmt.Errorf("stopped waiting for job %s, it continues on the server: %w", id, err),
		}
	}
	if waitCtx.Err() != nil {
		return &TimeoutError{ID: id, Waited: waited, Last: last}
	}
	return nil
}

func failLabel(labels Labels, err error) string {
	var te *TimeoutError
	if errors.As(err, &te) {
		return labels.InProgress + " (timed out)"
	}
	return labels.InProgress + " (interrupted)"
}
