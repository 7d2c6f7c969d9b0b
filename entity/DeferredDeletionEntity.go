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

package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/research-marketplace/account-deletion-service/view"
)

type DeferredDeletionEntity struct {
	tableName struct{} `pg:"deferred_deletion"`

	Id             string     `pg:"id, pk, type:varchar"`
	OriginalUserId string     `pg:"original_user_id, type:varchar"`
	Snapshot       string     `pg:"snapshot, type:text"`
	ScheduledAt    time.Time  `pg:"scheduled_at, type:timestamp without time zone"`
	DueAt          time.Time  `pg:"due_at, type:timestamp without time zone"`
	ExecutedAt     *time.Time `pg:"executed_at, type:timestamp without time zone"`
	Status         string     `pg:"status, type:varchar"`
}

func MakeDeferredDeletionView(ent DeferredDeletionEntity) view.DeferredDeletion {
	return view.DeferredDeletion{
		Id:             ent.Id,
		OriginalUserId: ent.OriginalUserId,
		Snapshot:       ent.Snapshot,
		ScheduledAt:    ent.ScheduledAt,
		DueAt:          ent.DueAt,
		ExecutedAt:     ent.ExecutedAt,
		Status:         view.DeletionStatus(ent.Status),
	}
}

func MarshalUserSnapshot(snapshot view.UserSnapshot) (string, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to serialize user snapshot: %w", err)
	}
	return string(data), nil
}

// SnapshotUserId returns the id of the user stored in the snapshot blob.
func (d DeferredDeletionEntity) SnapshotUserId() (string, error) {
	var snapshot view.UserSnapshot
	if err := json.Unmarshal([]byte(d.Snapshot), &snapshot); err != nil {
		return "", fmt.Errorf("failed to parse user snapshot: %w", err)
	}
	if snapshot.Id == "" {
		return "", fmt.Errorf("user snapshot has no user id")
	}
	return snapshot.Id, nil
}

func (d DeferredDeletionEntity) IsExecuted() bool {
	return d.ExecutedAt != nil || d.Status == string(view.DeletionExecuted)
}
