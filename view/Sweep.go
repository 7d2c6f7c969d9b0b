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

type SweepError struct {
	UserId string `json:"userId"`
	Step   string `json:"step"`
	Error  string `json:"error"`
}

type SweepResult struct {
	Processed    int          `json:"processed"`
	Executed     int          `json:"executed"`
	FilesDeleted int          `json:"filesDeleted"`
	RowsDeleted  int          `json:"rowsDeleted"`
	Errors       []SweepError `json:"errors"`
	Interrupted  bool         `json:"interrupted,omitempty"`
	Error        string       `json:"error,omitempty"`
}

func NewSweepResult() *SweepResult {
	return &SweepResult{Errors: []SweepError{}}
}

type SweepRun struct {
	RunId      string       `json:"runId"`
	InstanceId string       `json:"instanceId"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt *time.Time   `json:"finishedAt,omitempty"`
	Status     string       `json:"status"`
	Details    string       `json:"details,omitempty"`
	Result     *SweepResult `json:"result,omitempty"`
}

type SweepRuns struct {
	Runs []SweepRun `json:"runs"`
}
