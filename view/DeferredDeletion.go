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

package view

import "time"

type DeletionStatus string

const (
	DeletionScheduled DeletionStatus = "SCHEDULED"
	DeletionExecuted  DeletionStatus = "EXECUTED"
)

type DeferredDeletion struct {
	Id             string         `json:"id"`
	OriginalUserId string         `json:"originalUserId"`
	Snapshot       string         `json:"snapshot"`
	ScheduledAt    time.Time      `json:"scheduledAt"`
	DueAt          time.Time      `json:"dueAt"`
	ExecutedAt     *time.Time     `json:"executedAt,omitempty"`
	Status         DeletionStatus `json:"status"`
}

type DeferredDeletions struct {
	Deletions []DeferredDeletion `json:"deletions"`
}

type ScheduleDeletionReq struct {
	TestMode bool `json:"testMode"`
}

type StepReport struct {
	Step    string `json:"step"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

type ScheduleDeletionResult struct {
	RecordId         string     `json:"recordId"`
	UserId           string     `json:"userId"`
	ScheduledAt      time.Time  `json:"scheduledAt"`
	DueAt            time.Time  `json:"dueAt"`
	TestMode         bool       `json:"testMode"`
	IdentityDeletion StepReport `json:"identityDeletion"`
}
