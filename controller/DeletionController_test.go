package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/research-marketplace/account-deletion-service/exception"
	"github.com/research-marketplace/account-deletion-service/service/cleanup"
	"github.com/research-marketplace/account-deletion-service/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerStub struct {
	userId   string
	testMode bool
	err      error
}

func (s *schedulerStub) ScheduleUserDeletion(ctx context.Context, userId string, testMode bool) (*view.ScheduleDeletionResult, error) {
	s.userId = userId
	s.testMode = testMode
	if s.err != nil {
		return nil, s.err
	}
	return &view.ScheduleDeletionResult{RecordId: "r1", UserId: userId, TestMode: testMode}, nil
}

type verificationStub struct{}

func (verificationStub) VerifyUserDeletion(ctx context.Context, userId string) (*view.DeletionVerificationReport, error) {
	return &view.DeletionVerificationReport{UserId: userId, DeletionComplete: true}, nil
}

func (verificationStub) GetDeletionStatus(ctx context.Context, userId string) (*view.DeferredDeletions, error) {
	return &view.DeferredDeletions{Deletions: []view.DeferredDeletion{{Id: "r1", OriginalUserId: userId, Status: view.DeletionScheduled}}}, nil
}

type runnerStub struct {
	result *view.SweepResult
	err    error
}

func (r runnerStub) RunSweep(ctx context.Context) (*view.SweepResult, error) {
	return r.result, r.err
}

type sweepRunsStub struct {
	limit int
}

func (s *sweepRunsStub) GetLatestSweepRuns(ctx context.Context, limit int) (*view.SweepRuns, error) {
	s.limit = limit
	return &view.SweepRuns{Runs: []view.SweepRun{{RunId: "run1", Status: "complete", StartedAt: time.Now()}}}, nil
}

func newTestRouter(scheduler *schedulerStub, runner SweepRunner, sweepRuns *sweepRunsStub) *mux.Router {
	deletionController := NewDeletionController(scheduler, verificationStub{})
	sweepController := NewSweepController(runner, sweepRuns)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/users/{userId}/deletion", deletionController.ScheduleDeletion).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/users/{userId}/deletion", deletionController.GetDeletionStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/users/{userId}/deletion/verification", deletionController.VerifyDeletion).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/deletions/sweep", sweepController.RunSweep).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/deletions/sweeps", sweepController.GetSweepRuns).Methods(http.MethodGet)
	return r
}

func serve(router http.Handler, method string, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScheduleDeletion(t *testing.T) {
	scheduler := &schedulerStub{}
	router := newTestRouter(scheduler, runnerStub{}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/users/u1/deletion", []byte(`{"testMode":true}`))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "u1", scheduler.userId)
	assert.True(t, scheduler.testMode)
	var result view.ScheduleDeletionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "r1", result.RecordId)
}

func TestScheduleDeletion_EmptyBodyIsProductionMode(t *testing.T) {
	scheduler := &schedulerStub{}
	router := newTestRouter(scheduler, runnerStub{}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/users/u1/deletion", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, scheduler.testMode)
}

func TestScheduleDeletion_BadBody(t *testing.T) {
	scheduler := &schedulerStub{}
	router := newTestRouter(scheduler, runnerStub{}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/users/u1/deletion", []byte(`{"testMode":"yes"`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var customErr exception.CustomError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customErr))
	assert.Equal(t, exception.BadRequestBody, customErr.Code)
	assert.Empty(t, scheduler.userId)
}

func TestScheduleDeletion_PropagatesCustomError(t *testing.T) {
	scheduler := &schedulerStub{err: &exception.CustomError{Status: http.StatusNotFound, Code: exception.UserNotFound, Message: "not found"}}
	router := newTestRouter(scheduler, runnerStub{}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/users/u1/deletion", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetDeletionStatusAndVerification(t *testing.T) {
	router := newTestRouter(&schedulerStub{}, runnerStub{}, &sweepRunsStub{})

	rec := serve(router, http.MethodGet, "/api/v1/users/u1/deletion", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deletions view.DeferredDeletions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deletions))
	require.Len(t, deletions.Deletions, 1)
	assert.Equal(t, "u1", deletions.Deletions[0].OriginalUserId)

	rec = serve(router, http.MethodGet, "/api/v1/users/u1/deletion/verification", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report view.DeletionVerificationReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.DeletionComplete)
}

func TestRunSweep(t *testing.T) {
	result := view.NewSweepResult()
	result.Executed = 2
	router := newTestRouter(&schedulerStub{}, runnerStub{result: result}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/deletions/sweep", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var got view.SweepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Executed)
}

func TestRunSweep_AlreadyRunning(t *testing.T) {
	router := newTestRouter(&schedulerStub{}, runnerStub{err: cleanup.ErrSweepSkipped}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/deletions/sweep", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	var customErr exception.CustomError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customErr))
	assert.Equal(t, exception.SweepAlreadyRunning, customErr.Code)
}

func TestRunSweep_Failed(t *testing.T) {
	router := newTestRouter(&schedulerStub{}, runnerStub{err: errors.New("db down")}, &sweepRunsStub{})

	rec := serve(router, http.MethodPost, "/api/v1/deletions/sweep", nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSweepRuns(t *testing.T) {
	sweepRuns := &sweepRunsStub{}
	router := newTestRouter(&schedulerStub{}, runnerStub{}, sweepRuns)

	rec := serve(router, http.MethodGet, "/api/v1/deletions/sweeps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultSweepRunsLimit, sweepRuns.limit)

	rec = serve(router, http.MethodGet, "/api/v1/deletions/sweeps?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, sweepRuns.limit)

	rec = serve(router, http.MethodGet, "/api/v1/deletions/sweeps?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
