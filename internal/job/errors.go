package job

import (
	"fmt"
	"time"

	"github.com/szaher/saleor-cli/internal/clierr"
)

// FailedError reports a job the server marked FAILED.
type FailedError struct {
	Job *Job
}

func (e *FailedError) Error() string {
	msg := fmt.Sprintf("job %s failed", e.Job.ID)
	if e.Job.Detail != "" {
		msg += ": " + e.Job.Detail
	}
	return msg
}

// Category implements clierr.Categorized.
func (e *FailedError) Category() clierr.Category { return clierr.CategoryJobFailure }

// TimeoutError reports that the maximum wait elapsed while the job was
// still running. The job itself may still finish on the server.
type TimeoutError struct {
	ID     string
	Waited time.Duration
	Last   Status
}

func (e *TimeoutError) Error() string {
	last := string(e.Last)
	if last == "" {
		last = "unknown"
	}
	return fmt.Sprintf("timed out after %s waiting for job %s (last status %s); it may still be running",
		e.Waited.Round(time.Millisecond), e.ID, last)
}

// Category implements clierr.Categorized.
func (e *TimeoutError) Category() clierr.Category { return clierr.CategoryTimeout }

// Hint implements clierr.Hinted.
func (e *TimeoutError) Hint() string {
	return fmt.Sprintf("run `saleor job wait %s` to keep waiting", e.ID)
}

// ConnectivityError reports that status checks kept failing at the
// transport level. It says nothing about the job's own outcome.
type ConnectivityError struct {
	ID       string
	Attempts int
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("could not reach the server to check job %s after %d attempts: %v", e.ID, e.Attempts, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// Category implements clierr.Categorized.
func (e *ConnectivityError) Category() clierr.Category { return clierr.CategoryConnectivity }

// Hint implements clierr.Hinted.
func (e *ConnectivityError) Hint() string {
	return fmt.Sprintf("check your connection, then run `saleor job wait %s`", e.ID)
}
