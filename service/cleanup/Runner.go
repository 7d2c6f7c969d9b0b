package cleanup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/research-marketplace/account-deletion-service/metrics"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/service/cleanup/logger"
	"github.com/research-marketplace/account-deletion-service/utils"
	"github.com/research-marketplace/account-deletion-service/view"
)

const (
	sweepLockName         = "deferred_deletion_sweep_lock"
	lockLease             = 120 * time.Second
	lockHeartbeat         = 30 * time.Second
	maxErrorMessageLength = 1000
	updateContextTimeout  = 10 * time.Second
)

type JobRunner struct {
	lockService service.LockService
	config      jobConfig
	processor   JobProcessor
	clock       clock.Clock
}

func NewDeferredDeletionSweepRunner(processor JobProcessor, lockService service.LockService, instanceId string, timeout time.Duration, clk clock.Clock) *JobRunner {
	return &JobRunner{
		lockService: lockService,
		config: jobConfig{
			jobType:    deferredDeletionSweep,
			instanceId: instanceId,
			timeout:    timeout,
		},
		processor: processor,
		clock:     clk,
	}
}

// Run implements cron.Job.
func (r *JobRunner) Run() {
	if _, err := r.RunSweep(context.Background()); err != nil && !errors.Is(err, ErrSweepSkipped) {
		logger.Errorf(context.Background(), "%s failed: %v", r.config.jobType, err)
	}
}

// RunSweep performs one sweep under the shared lock and stores the run record.
// When err is set the result is either nil (nothing was swept) or partial with Interrupted set.
func (r *JobRunner) RunSweep(ctx context.Context) (result *view.SweepResult, err error) {
	runId := uuid.New().String()
	startedAt := r.clock.Now().UTC()

	var jobCtx context.Context
	var jobCancel context.CancelFunc
	if r.config.timeout > 0 {
		jobCtx, jobCancel = context.WithTimeout(ctx, r.config.timeout)
	} else {
		jobCtx, jobCancel = context.WithCancel(ctx)
	}
	defer jobCancel()
	jobCtx = logger.WithJob(jobCtx, string(r.config.jobType), runId)

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%s failed with panic: %v", r.config.jobType, rec)
			logger.Errorf(jobCtx, "%s", err.Error())
			finishedAt := r.clock.Now().UTC()
			_ = r.processor.UpdateProgress(jobCtx, runId, statusError, formatErrorMessage(err.Error()), result, &finishedAt)
			metrics.SweepRuns.WithLabelValues(string(statusError)).Inc()
		}
	}()

	acquired, err := r.acquireLock(jobCtx, jobCancel)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrSweepSkipped
	}
	defer r.releaseLock(jobCtx)

	logger.Infof(jobCtx, "Starting %s, timeout %v", r.config.jobType, r.config.timeout)
	if err = r.processor.Initialize(jobCtx, runId, r.config.instanceId, startedAt); err != nil {
		return nil, fmt.Errorf("failed to initialize sweep run: %w", err)
	}

	result, err = r.processor.Process(jobCtx, runId, r.clock.Now().UTC())
	isTimeout := errors.Is(jobCtx.Err(), context.DeadlineExceeded)
	if err != nil {
		logger.Warnf(jobCtx, "Sweep finished with error: %v", err)
	}

	recorded := result
	if recorded == nil {
		recorded = view.NewSweepResult()
	}
	if err != nil {
		recorded.Interrupted = true
		recorded.Error = formatErrorMessage(err.Error())
	}
	r.finishRun(jobCtx, runId, recorded, err, isTimeout, startedAt)
	return result, err
}

func (r *JobRunner) acquireLock(ctx context.Context, cancel context.CancelFunc) (bool, error) {
	lockOptions := service.LockOptions{
		Lease:             lockLease,
		HeartbeatInterval: lockHeartbeat,
		NotifyOnLoss:      true,
	}

	acquired, lockLostCh, err := r.lockService.AcquireLock(ctx, sweepLockName, lockOptions)
	if err != nil {
		logger.Errorf(ctx, "Failed to acquire lock: %v", err)
		return false, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !acquired {
		logger.Info(ctx, "job skipped - lock is held by another instance")
		return false, nil
	}

	if lockLostCh != nil {
		utils.SafeAsync(func() {
			event, ok := <-lockLostCh
			if !ok {
				return
			}
			logger.Warnf(ctx, "Lock %s lost: %s. Canceling sweep", event.LockName, event.Reason)
			cancel()
		})
	}
	return true, nil
}

func (r *JobRunner) releaseLock(ctx context.Context) {
	releaseCtx, releaseCancel := createContextForUpdate(ctx)
	defer releaseCancel()

	if err := r.lockService.ReleaseLock(releaseCtx, sweepLockName); err != nil {
		logger.Errorf(ctx, "Failed to release lock: %v", err)
	}
}

func (r *JobRunner) finishRun(ctx context.Context, runId string, result *view.SweepResult, processErr error, isTimeout bool, startedAt time.Time) {
	messages := make([]string, 0, len(result.Errors)+1)
	for _, sweepErr := range result.Errors {
		messages = append(messages, fmt.Sprintf("%s/%s: %s", sweepErr.UserId, sweepErr.Step, sweepErr.Error))
	}
	if processErr != nil {
		messages = append(messages, fmt.Sprintf("sweep stopped: %s", processErr.Error()))
	}

	status := determineJobStatus(len(messages) > 0, isTimeout)
	details := formatErrorMessage(formatJobErrors(r.config.jobType, messages))

	finishedAt := r.clock.Now().UTC()
	metrics.SweepRuns.WithLabelValues(string(status)).Inc()
	metrics.SweepDuration.Observe(finishedAt.Sub(startedAt).Seconds())

	if err := r.processor.UpdateProgress(ctx, runId, status, details, result, &finishedAt); err != nil {
		logger.Errorf(ctx, "Failed to save sweep run state: %v, status: %s, details: %s", err, status, details)
		return
	}
	logger.Infof(ctx, "job finished with status '%s'. Processed %d, executed %d, deleted %d files and %d rows, %d errors",
		status, result.Processed, result.Executed, result.FilesDeleted, result.RowsDeleted, len(result.Errors))
}

func createContextForUpdate(parentCtx context.Context) (context.Context, context.CancelFunc) {
	if parentCtx.Err() != nil {
		return context.WithTimeout(context.WithoutCancel(parentCtx), updateContextTimeout)
	}
	return parentCtx, func() {}
}

func formatErrorMessage(errorMessage string) string {
	if len([]rune(errorMessage)) > maxErrorMessageLength {
		return utils.TruncateRunes(errorMessage, maxErrorMessageLength-3) + "..."
	}
	return errorMessage
}

func determineJobStatus(hasErrors bool, isTimeout bool) jobStatus {
	if isTimeout {
		return statusTimeout
	}
	if hasErrors {
		return statusError
	}
	return statusComplete
}

func getContextCancellationMessage(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	return "distributed lock was lost or the sweep was cancelled"
}

func formatJobErrors(jobType jobType, errors []string) string {
	if len(errors) == 0 {
		return ""
	}
	return fmt.Sprintf("%s finished with errors: %s", jobType, strings.Join(errors, "; "))
}
