package cleanup

import (
	"context"
	"errors"
	"time"

	"github.com/research-marketplace/account-deletion-service/view"
)

type jobType string
type jobStatus string

const (
	deferredDeletionSweep jobType = "deferred deletion sweep"

	statusRunning  jobStatus = "running"
	statusComplete jobStatus = "complete"
	statusError    jobStatus = "error"
	statusTimeout  jobStatus = "timeout"
)

// ErrSweepSkipped is returned when another instance holds the sweep lock.
var ErrSweepSkipped = errors.New("sweep skipped: lock is held by another instance")

type JobProcessor interface {
	Initialize(ctx context.Context, runId string, instanceId string, startedAt time.Time) error
	Process(ctx context.Context, runId string, now time.Time) (*view.SweepResult, error)
	UpdateProgress(ctx context.Context, runId string, status jobStatus, details string, result *view.SweepResult, finishedAt *time.Time) error
}

type jobConfig struct {
	jobType    jobType
	instanceId string
	timeout    time.Duration
}
