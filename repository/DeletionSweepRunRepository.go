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

package repository

import (
	"context"
	"time"

	"github.com/research-marketplace/account-deletion-service/db"
	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/view"
)

type DeletionSweepRunRepository interface {
	StoreSweepRun(ctx context.Context, ent entity.DeletionSweepRunEntity) error
	UpdateSweepRun(ctx context.Context, runId string, status string, details string, result *view.SweepResult, finishedAt *time.Time) error
	GetLatestSweepRuns(ctx context.Context, limit int) ([]entity.DeletionSweepRunEntity, error)
}

func NewDeletionSweepRunRepository(cp db.ConnectionProvider) DeletionSweepRunRepository {
	return &deletionSweepRunRepositoryImpl{cp: cp}
}

type deletionSweepRunRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (d deletionSweepRunRepositoryImpl) StoreSweepRun(ctx context.Context, ent entity.DeletionSweepRunEntity) error {
	_, err := d.cp.GetConnection().ModelContext(ctx, &ent).Insert()
	return err
}

func (d deletionSweepRunRepositoryImpl) UpdateSweepRun(ctx context.Context, runId string, status string, details string, result *view.SweepResult, finishedAt *time.Time) error {
	query := d.cp.GetConnection().ModelContext(ctx, &entity.DeletionSweepRunEntity{})

	if status != "" {
		query = query.Set("status = ?", status)
	}
	if details != "" {
		query = query.Set("details = ?", details)
	}
	if result != nil {
		query = query.Set("result = ?", result)
	}
	if finishedAt != nil {
		query = query.Set("finished_at = ?", finishedAt)
	}

	_, err := query.Where("run_id = ?", runId).Update()
	return err
}

func (d deletionSweepRunRepositoryImpl) GetLatestSweepRuns(ctx context.Context, limit int) ([]entity.DeletionSweepRunEntity, error) {
	var result []entity.DeletionSweepRunEntity
	err := d.cp.GetConnection().ModelContext(ctx, &result).
		Order("started_at DESC").
		Limit(limit).
		Select()
	if err != nil {
		return nil, err
	}
	return result, nil
}
