package controller

import (
	"context"
	"errors"
	"net/http"

	secctx "github.com/research-marketplace/account-deletion-service/context"
	"github.com/research-marketplace/account-deletion-service/exception"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/service/cleanup"
	"github.com/research-marketplace/account-deletion-service/utils"
	"github.com/research-marketplace/account-deletion-service/view"
	log "github.com/sirupsen/logrus"
)

const (
	defaultSweepRunsLimit = 20
	maxSweepRunsLimit     = 100
)

type SweepRunner interface {
	RunSweep(ctx context.Context) (*view.SweepResult, error)
}

type SweepController interface {
	RunSweep(w http.ResponseWriter, r *http.Request)
	GetSweepRuns(w http.ResponseWriter, r *http.Request)
}

func NewSweepController(runner SweepRunner, sweepRunService service.SweepRunService) SweepController {
	return &sweepControllerImpl{
		runner:          runner,
		sweepRunService: sweepRunService,
	}
}

type sweepControllerImpl struct {
	runner          SweepRunner
	sweepRunService service.SweepRunService
}

func (s sweepControllerImpl) RunSweep(w http.ResponseWriter, r *http.Request) {
	log.Infof("Deferred deletion sweep requested by %s", secctx.Create(r).GetUserId())
	// a client disconnect must not interrupt a sweep that already holds the lock
	result, err := s.runner.RunSweep(context.WithoutCancel(r.Context()))
	if err != nil {
		if errors.Is(err, cleanup.ErrSweepSkipped) {
			utils.RespondWithCustomError(w, &exception.CustomError{
				Status:  http.StatusConflict,
				Code:    exception.SweepAlreadyRunning,
				Message: exception.SweepAlreadyRunningMsg,
			})
			return
		}
		// a partial result carries Interrupted and the error text
		if result == nil {
			utils.RespondWithCustomError(w, &exception.CustomError{
				Status:  http.StatusInternalServerError,
				Code:    exception.SweepFailed,
				Message: exception.SweepFailedMsg,
				Debug:   err.Error(),
			})
			return
		}
	}
	utils.RespondWithJson(w, http.StatusOK, result)
}

func (s sweepControllerImpl) GetSweepRuns(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	limit, err := utils.ParseLimit(limitStr, defaultSweepRunsLimit, maxSweepRunsLimit)
	if err != nil {
		utils.RespondWithCustomError(w, &exception.CustomError{
			Status:  http.StatusBadRequest,
			Code:    exception.InvalidParameterValue,
			Message: exception.InvalidParameterValueMsg,
			Params:  map[string]interface{}{"param": "limit", "value": limitStr},
			Debug:   err.Error(),
		})
		return
	}
	runs, err := s.sweepRunService.GetLatestSweepRuns(r.Context(), limit)
	if err != nil {
		utils.RespondWithError(w, "Failed to get sweep runs", err)
		return
	}
	utils.RespondWithJson(w, http.StatusOK, runs)
}
