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

package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/metrics"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/service/cleanup/logger"
	"github.com/research-marketplace/account-deletion-service/view"
)

const (
	SnapshotStep     = "snapshot"
	FilesStep        = "files"
	MarkExecutedStep = "mark executed"
)

type deferredDeletionSweepProcessor struct {
	deletionRepo  repository.DeferredDeletionRepository
	ownedDataRepo repository.UserOwnedDataRepository
	sweepRunRepo  repository.DeletionSweepRunRepository
	storage       service.MinioStorageService
	tables        []entity.OwnedTable
}

func NewDeferredDeletionSweepProcessor(
	deletionRepo repository.DeferredDeletionRepository,
	ownedDataRepo repository.UserOwnedDataRepository,
	sweepRunRepo repository.DeletionSweepRunRepository,
	storage service.MinioStorageService,
) JobProcessor {
	return &deferredDeletionSweepProcessor{
		deletionRepo:  deletionRepo,
		ownedDataRepo: ownedDataRepo,
		sweepRunRepo:  sweepRunRepo,
		storage:       storage,
		tables:        entity.UserOwnedTables(),
	}
}

func (p *deferredDeletionSweepProcessor) Initialize(ctx context.Context, runId string, instanceId string, startedAt time.Time) error {
	err := p.sweepRunRepo.StoreSweepRun(ctx, entity.DeletionSweepRunEntity{
		RunId:      runId,
		InstanceId: instanceId,
		StartedAt:  startedAt,
		Status:     string(statusRunning),
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to initialize sweep run: %v", err)
		return err
	}
	return nil
}

// Process sweeps every due deferred deletion one record at a time. Step failures are collected in
// the result and never stop the remaining steps; only cancellation stops the sweep between records.
// A nil result means nothing was swept.
func (p *deferredDeletionSweepProcessor) Process(ctx context.Context, runId string, now time.Time) (*view.SweepResult, error) {
	result := view.NewSweepResult()

	records, err := p.deletionRepo.GetDueDeferredDeletions(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load due deferred deletions: %w", err)
	}
	logger.Infof(ctx, "Found %d deferred deletions due at %s", len(records), now.Format(time.RFC3339))

	for _, record := range records {
		select {
		case <-ctx.Done():
			errorMessage := getContextCancellationMessage(ctx)
			logger.Warnf(ctx, "job interrupted - %s", errorMessage)
			return result, fmt.Errorf("job interrupted - %s", errorMessage)
		default:
		}

		for _, step := range p.sweepRecord(ctx, record, now, result) {
			if !step.Failed() {
				continue
			}
			result.Errors = append(result.Errors, view.SweepError{
				UserId: step.UserId,
				Step:   step.Step,
				Error:  step.ErrorText(),
			})
			metrics.SweepErrors.WithLabelValues(step.Step).Inc()
		}
	}
	return result, nil
}

func (p *deferredDeletionSweepProcessor) sweepRecord(ctx context.Context, record entity.DeferredDeletionEntity, now time.Time, result *view.SweepResult) []service.StepResult {
	steps := make([]service.StepResult, 0, len(p.tables)+3)
	result.Processed++
	metrics.SweepRecordsProcessed.Inc()

	if record.IsExecuted() {
		logger.Debugf(ctx, "Deferred deletion %s is already executed, skipping", record.Id)
		return steps
	}

	userId, err := record.SnapshotUserId()
	if err != nil {
		userId = record.OriginalUserId
		logger.Warnf(ctx, "Deferred deletion %s: %v, using original user id %s", record.Id, err, userId)
		steps = append(steps, service.SoftFailedStep(userId, SnapshotStep, err))
	}
	if userId == "" {
		// an empty id would match every unowned row and the whole bucket
		return append(steps, service.HardFailedStep(userId, SnapshotStep, fmt.Errorf("deferred deletion %s has no user id", record.Id)))
	}

	steps = append(steps, p.deleteFiles(ctx, userId, result))
	for _, table := range p.tables {
		steps = append(steps, p.deleteOwnedRows(ctx, table, userId, result))
	}
	steps = append(steps, p.markExecuted(ctx, record, userId, now, result))
	return steps
}

func (p *deferredDeletionSweepProcessor) deleteFiles(ctx context.Context, userId string, result *view.SweepResult) service.StepResult {
	keys, err := p.storage.ListUserFiles(ctx, userId+"/")
	if err != nil {
		logger.Warnf(ctx, "Failed to list files of user %s: %v", userId, err)
		return service.SoftFailedStep(userId, FilesStep, err)
	}
	removed, err := p.storage.RemoveFiles(ctx, keys)
	result.FilesDeleted += removed
	metrics.SweepFilesDeleted.Add(float64(removed))
	if err != nil {
		logger.Warnf(ctx, "Failed to remove files of user %s: %v", userId, err)
		return service.SoftFailedStep(userId, FilesStep, err)
	}
	logger.Debugf(ctx, "Removed %d files of user %s", removed, userId)
	return service.OkStep(userId, FilesStep)
}

func (p *deferredDeletionSweepProcessor) deleteOwnedRows(ctx context.Context, table entity.OwnedTable, userId string, result *view.SweepResult) service.StepResult {
	ids, err := p.ownedDataRepo.FindOwnedRowIds(ctx, table, userId)
	if err != nil {
		logger.Warnf(ctx, "Failed to find %s rows of user %s: %v", table.Name, userId, err)
		return service.SoftFailedStep(userId, table.Name, err)
	}
	var firstErr error
	failed := 0
	for _, id := range ids {
		if err = p.ownedDataRepo.DeleteOwnedRow(ctx, table, id); err != nil {
			logger.Warnf(ctx, "Failed to delete %s row %s of user %s: %v", table.Name, id, userId, err)
			if firstErr == nil {
				firstErr = err
			}
			failed++
			continue
		}
		result.RowsDeleted++
		metrics.SweepRowsDeleted.WithLabelValues(table.Name).Inc()
	}
	if len(ids) > 0 {
		logger.Debugf(ctx, "Deleted %d of %d %s rows of user %s", len(ids)-failed, len(ids), table.Name, userId)
	}
	if firstErr != nil {
		return service.SoftFailedStep(userId, table.Name, fmt.Errorf("%d of %d rows not deleted: %w", failed, len(ids), firstErr))
	}
	return service.OkStep(userId, table.Name)
}

func (p *deferredDeletionSweepProcessor) markExecuted(ctx context.Context, record entity.DeferredDeletionEntity, userId string, now time.Time, result *view.SweepResult) service.StepResult {
	updated, err := p.deletionRepo.MarkExecuted(ctx, record.Id, now)
	if err != nil {
		logger.Errorf(ctx, "Failed to mark deferred deletion %s executed, it will be retried by the next sweep: %v", record.Id, err)
		return service.HardFailedStep(userId, MarkExecutedStep, err)
	}
	if !updated {
		logger.Warnf(ctx, "Deferred deletion %s was already executed by another sweep", record.Id)
		return service.OkStep(userId, MarkExecutedStep)
	}
	result.Executed++
	metrics.SweepRecordsExecuted.Inc()
	logger.Infof(ctx, "Deferred deletion %s of user %s executed", record.Id, userId)
	return service.OkStep(userId, MarkExecutedStep)
}

func (p *deferredDeletionSweepProcessor) UpdateProgress(ctx context.Context, runId string, status jobStatus, details string, result *view.SweepResult, finishedAt *time.Time) error {
	updateCtx, cancel := createContextForUpdate(ctx)
	defer cancel()

	err := p.sweepRunRepo.UpdateSweepRun(updateCtx, runId, string(status), details, result, finishedAt)
	if err != nil {
		logger.Errorf(ctx, "failed to set '%s' status for sweep run: %s", status, err.Error())
		return err
	}
	return nil
}
