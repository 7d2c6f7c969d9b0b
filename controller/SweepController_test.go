package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/research-marketplace/account-deletion-service/exception"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/service/cleanup"
	"github.com/research-marketplace/account-deletion-service/testutils"
	"github.com/research-marketplace/account-deletion-service/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweepRunner(deletions *testutils.DeferredDeletionRepository) (*cleanup.JobRunner, *testutils.DeletionSweepRunRepository) {
	clk := testclock.NewClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))
	runs := testutils.NewDeletionSweepRunRepository()
	processor := cleanup.NewDeferredDeletionSweepProcessor(deletions, testutils.NewUserOwnedDataRepository(), runs, testutils.NewObjectStorage())
	lockService := service.NewLockService(testutils.NewLockRepository(clk), "instance-1", clk)
	return cleanup.NewDeferredDeletionSweepRunner(processor, lockService, "instance-1", time.Minute, clk), runs
}

func TestRunSweep_LoadFailureIsReportedAsServerError(t *testing.T) {
	deletions := testutils.NewDeferredDeletionRepository()
	deletions.GetDueErr = errors.New("connection refused")
	runner, runs := newSweepRunner(deletions)
	router := newTestRouter(&schedulerStub{}, runner, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/deletions/sweep", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var customErr exception.CustomError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customErr))
	assert.Equal(t, exception.SweepFailed, customErr.Code)
	assert.Contains(t, customErr.Debug, "connection refused")

	stored, err := runs.GetLatestSweepRuns(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "error", stored[0].Status)
}

func TestRunSweep_NothingDueWithRealRunner(t *testing.T) {
	runner, _ := newSweepRunner(testutils.NewDeferredDeletionRepository())
	router := newTestRouter(&schedulerStub{}, runner, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/deletions/sweep", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var result view.SweepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Interrupted)
	assert.Empty(t, result.Error)
	assert.Equal(t, 0, result.Processed)
}

func TestRunSweep_InterruptedSweepIsVisible(t *testing.T) {
	partial := view.NewSweepResult()
	partial.Processed = 1
	partial.Interrupted = true
	partial.Error = "job interrupted - timeout"
	router := newTestRouter(&schedulerStub{}, runnerStub{result: partial, err: errors.New("job interrupted - timeout")}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/deletions/sweep", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var result view.SweepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Interrupted)
	assert.Equal(t, "job interrupted - timeout", result.Error)
	assert.Equal(t, 1, result.Processed)
}
