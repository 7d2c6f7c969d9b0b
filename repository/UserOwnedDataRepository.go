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
	"fmt"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
	"github.com/research-marketplace/account-deletion-service/db"
	"github.com/research-marketplace/account-deletion-service/entity"
)

type UserOwnedDataRepository interface {
	FindOwnedRowIds(ctx context.Context, table entity.OwnedTable, userId string) ([]string, error)
	DeleteOwnedRow(ctx context.Context, table entity.OwnedTable, rowId string) error
	CountOwnedRows(ctx context.Context, table entity.OwnedTable, userId string) (int, error)
}

func NewUserOwnedDataRepository(cp db.ConnectionProvider) UserOwnedDataRepository {
	return &userOwnedDataRepositoryImpl{cp: cp}
}

type userOwnedDataRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (u userOwnedDataRepositoryImpl) FindOwnedRowIds(ctx context.Context, table entity.OwnedTable, userId string) ([]string, error) {
	var ids []string
	err := u.cp.GetConnection().ModelContext(ctx, table.NewModel()).
		ColumnExpr("array_agg(id)").
		WhereGroup(ownedBy(table, userId)).
		Select(pg.Array(&ids))
	if err != nil {
		return nil, fmt.Errorf("failed to find rows of user %s in %s: %w", userId, table.Name, err)
	}
	return ids, nil
}

func (u userOwnedDataRepositoryImpl) DeleteOwnedRow(ctx context.Context, table entity.OwnedTable, rowId string) error {
	_, err := u.cp.GetConnection().ModelContext(ctx, table.NewModel()).
		Where("id = ?", rowId).
		Delete()
	if err != nil {
		return fmt.Errorf("failed to delete row %s from %s: %w", rowId, table.Name, err)
	}
	return nil
}

func (u userOwnedDataRepositoryImpl) CountOwnedRows(ctx context.Context, table entity.OwnedTable, userId string) (int, error) {
	count, err := u.cp.GetConnection().ModelContext(ctx, table.NewModel()).
		WhereGroup(ownedBy(table, userId)).
		Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count rows of user %s in %s: %w", userId, table.Name, err)
	}
	return count, nil
}

func ownedBy(table entity.OwnedTable, userId string) func(q *orm.Query) (*orm.Query, error) {
	return func(q *orm.Query) (*orm.Query, error) {
		for _, column := range table.OwnerColumns {
			q = q.WhereOr("? = ?", pg.Ident(column), userId)
		}
		return q, nil
	}
}
