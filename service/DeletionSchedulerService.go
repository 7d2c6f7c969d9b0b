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

package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/research-marketplace/account-deletion-service/client"
	"github.com/research-marketplace/account-deletion-service/config"
	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/exception"
	"github.com/research-marketplace/account-deletion-service/metrics"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/view"
	log "github.com/sirupsen/logrus"
)

const IdentityDeletionStep = "identity provider"

type DeletionSchedulerService interface {
	ScheduleUserDeletion(ctx context.Context, userId string, testMode bool) (*view.ScheduleDeletionResult, error)
}

func NewDeletionSchedulerService(
	userRepo repository.UserRepository,
	deletionRepo repository.DeferredDeletionRepository,
	identityProvider client.IdentityProviderClient,
	deletionConfig config.DeletionConfig,
	clk clock.Clock,
) DeletionSchedulerService {
	return &deletionSchedulerServiceImpl{
		userRepo:         userRepo,
		deletionRepo:     deletionRepo,
		identityProvider: identityProvider,
		deletionConfig:   deletionConfig,
		clock:            clk,
	}
}

type deletionSchedulerServiceImpl struct {
	userRepo         repository.UserRepository
	deletionRepo     repository.DeferredDeletionRepository
	identityProvider client.IdentityProviderClient
	deletionConfig   config.DeletionConfig
	clock            clock.Clock
}

func (d deletionSchedulerServiceImpl) ScheduleUserDeletion(ctx context.Context, userId string, testMode bool) (*view.ScheduleDeletionResult, error) {
	user, err := d.userRepo.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &exception.CustomError{
			Status:  http.StatusNotFound,
			Code:    exception.UserNotFound,
			Message: exception.UserNotFoundMsg,
			Params:  map[string]interface{}{"userId": userId},
		}
	}

	scheduledAt := d.clock.Now().UTC()
	dueAt := scheduledAt.Add(d.deletionConfig.Delay(testMode))

	snapshot, err := entity.MarshalUserSnapshot(entity.MakeUserSnapshot(user))
	if err != nil {
		return nil, err
	}
	record := &entity.DeferredDeletionEntity{
		Id:             uuid.New().String(),
		OriginalUserId: user.Id,
		Snapshot:       snapshot,
		ScheduledAt:    scheduledAt,
		DueAt:          dueAt,
		Status:         string(view.DeletionScheduled),
	}
	if err = d.deletionRepo.CreateDeferredDeletion(ctx, record); err != nil {
		return nil, &exception.CustomError{
			Status:  http.StatusInternalServerError,
			Code:    exception.DeletionSchedulingFailed,
			Message: exception.DeletionSchedulingFailedMsg,
			Params:  map[string]interface{}{"userId": userId},
			Debug:   err.Error(),
		}
	}
	log.Infof("Scheduled deletion %s of user %s, due at %s (test mode: %t)", record.Id, user.Id, dueAt.Format(time.RFC3339), testMode)

	identityStep := d.deleteIdentity(ctx, user)
	metrics.IdentityDeletions.WithLabelValues(string(identityStep.Outcome)).Inc()

	if err = d.userRepo.DeleteUser(ctx, user.Id); err != nil {
		return nil, &exception.CustomError{
			Status:  http.StatusInternalServerError,
			Code:    exception.UserRowDeletionFailed,
			Message: exception.UserRowDeletionFailedMsg,
			Params:  map[string]interface{}{"userId": userId},
			Debug:   err.Error(),
		}
	}
	metrics.DeletionsScheduled.WithLabelValues(strconv.FormatBool(testMode)).Inc()

	return &view.ScheduleDeletionResult{
		RecordId:    record.Id,
		UserId:      user.Id,
		ScheduledAt: scheduledAt,
		DueAt:       dueAt,
		TestMode:    testMode,
		IdentityDeletion: view.StepReport{
			Step:    identityStep.Step,
			Outcome: string(identityStep.Outcome),
			Error:   identityStep.ErrorText(),
		},
	}, nil
}

// deleteIdentity removes the identity provider account keyed by email, retrying with the user id
// only when the provider does not know the email. If both keys fail the account may stay orphaned.
func (d deletionSchedulerServiceImpl) deleteIdentity(ctx context.Context, user *entity.UserEntity) StepResult {
	username := user.Email
	if username == "" {
		username = user.Id
	}
	err := d.identityProvider.DeleteIdentity(ctx, username)
	if err != nil && errors.Is(err, client.ErrIdentityNotFound) && username != user.Id {
		log.Debugf("Identity %s not found, retrying with user id %s", username, user.Id)
		err = d.identityProvider.DeleteIdentity(ctx, user.Id)
	}
	if err != nil {
		log.Warnf("Failed to delete identity of user %s, continuing with deletion: %v", user.Id, err)
		return SoftFailedStep(user.Id, IdentityDeletionStep, fmt.Errorf("identity deletion failed: %w", err))
	}
	return OkStep(user.Id, IdentityDeletionStep)
}
