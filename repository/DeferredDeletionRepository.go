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

type DeferredDeletionRepository interface {
	CreateDeferredDeletion(ctx context.Context, ent *entity.DeferredDeletionEntity) error
	// GetDueDeferredDeletions returns scheduled, not yet executed records with due_at <= now, oldest first.
	GetDueDeferredDeletions(ctx context.Context, now time.Time) ([]entity.DeferredDeletionEntity, error)
	GetDeferredDeletionsByUserId(ctx context.Context, userId string) ([]entity.DeferredDeletionEntity, error)
	// MarkExecuted moves a record to EXECUTED. Returns false if the record was already executed.
	MarkExecuted(ctx context.Context, id string, executedAt time.Time) (bool, error)
}

func NewDeferredDeletionRepository(cp db.ConnectionProvider) DeferredDeletionRepository {
	return &deferredDeletionRepositoryImpl{cp: cp}
}

type deferredDeletionRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (d deferredDeletionRepositoryImpl) CreateDeferredDeletion(ctx context.Context, ent *entity.DeferredDeletionEntity) error {
	_, err := d.cp.GetConnection().ModelContext(ctx, ent).Insert()
	return err
}

func (d deferredDeletionRepositoryImpl) GetDueDeferredDeletions(ctx context.Context, now time.Time) ([]entity.DeferredDeletionEntity, error) {
	var result []entity.DeferredDeletionEntity
	err := d.cp.GetConnection().ModelContext(ctx, &result).
		Where("status = ?", string(view.DeletionScheduled)).
		Where("executed_at is null").
		Where("due_at <= ?", now).
		Order("due_at ASC").
		Select()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d deferredDeletionRepositoryImpl) GetDeferredDeletionsByUserId(ctx context.Context, userId string) ([]entity.DeferredDeletionEntity, error) {
	var result []entity.DeferredDeletionEntity
	err := d.cp.GetConnection().ModelContext(ctx, &result).
		Where("original_user_id = ?", userId).
		Order("scheduled_at DESC").
		Select()
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (d deferredDeletionRepositoryImpl) MarkExecuted(ctx context.Context, id string, executedAt time.Time) (bool, error) {
	result, err := d.cp.GetConnection().ModelContext(ctx, &entity.DeferredDeletionEntity{}).
		Set("status = ?", string(view.DeletionExecuted)).
		Set("executed_at = ?", executedAt).
		Where("id = ?", id).
		Where("status = ?", string(view.DeletionScheduled)).
		Where("executed_at is null").
		Update()
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
