// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package controller

import (
	"net/http"

	"github.com/research-marketplace/account-deletion-service/context"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/utils"
	"github.com/research-marketplace/account-deletion-service/view"
	log "github.com/sirupsen/logrus"
)

type DeletionController interface {
	ScheduleDeletion(w http.ResponseWriter, r *http.Request)
	GetDeletionStatus(w http.ResponseWriter, r *http.Request)
	VerifyDeletion(w http.ResponseWriter, r *http.Request)
}

func NewDeletionController(schedulerService service.DeletionSchedulerService, verificationService service.VerificationService) DeletionController {
	return &deletionControllerImpl{
		schedulerService:    schedulerService,
		verificationService: verificationService,
	}
}

type deletionControllerImpl struct {
	schedulerService    service.DeletionSchedulerService
	verificationService service.VerificationService
}

func (d deletionControllerImpl) ScheduleDeletion(w http.ResponseWriter, r *http.Request) {
	userId, customErr := getRequiredStringParam(r, "userId")
	if customErr != nil {
		utils.RespondWithCustomError(w, customErr)
		return
	}
	var req view.ScheduleDeletionReq
	if customErr = decodeOptionalBody(r, &req); customErr != nil {
		utils.RespondWithCustomError(w, customErr)
		return
	}
	log.Infof("Deletion of user %s requested by %s (test mode: %t)", userId, context.Create(r).GetUserId(), req.TestMode)

	result, err := d.schedulerService.ScheduleUserDeletion(r.Context(), userId, req.TestMode)
	if err != nil {
		utils.RespondWithError(w, "Failed to schedule user deletion", err)
		return
	}
	utils.RespondWithJson(w, http.StatusAccepted, result)
}

func (d deletionControllerImpl) GetDeletionStatus(w http.ResponseWriter, r *http.Request) {
	userId, customErr := getRequiredStringParam(r, "userId")
	if customErr != nil {
		utils.RespondWithCustomError(w, customErr)
		return
	}
	deletions, err := d.verificationService.GetDeletionStatus(r.Context(), userId)
	if err != nil {
		utils.RespondWithError(w, "Failed to get deferred deletions", err)
		return
	}
	utils.RespondWithJson(w, http.StatusOK, deletions)
}

func (d deletionControllerImpl) VerifyDeletion(w http.ResponseWriter, r *http.Request) {
	userId, customErr := getRequiredStringParam(r, "userId")
	if customErr != nil {
		utils.RespondWithCustomError(w, customErr)
		return
	}
	report, err := d.verificationService.VerifyUserDeletion(r.Context(), userId)
	if err != nil {
		utils.RespondWithError(w, "Failed to verify user deletion", err)
		return
	}
	utils.RespondWithJson(w, http.StatusOK, report)
}
