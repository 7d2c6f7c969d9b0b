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

import "time"

type MessageEntity struct {
	tableName struct{} `pg:"message"`

	Id         string    `pg:"id, pk, type:varchar"`
	SenderId   string    `pg:"sender_id, type:varchar"`
	ReceiverId string    `pg:"receiver_id, type:varchar"`
	Body       string    `pg:"body, type:text"`
	SentAt     time.Time `pg:"sent_at, type:timestamp without time zone"`
}

type ApplicationEntity struct {
	tableName struct{} `pg:"application"`

	Id        string    `pg:"id, pk, type:varchar"`
	StudentId string    `pg:"student_id, type:varchar"`
	ProjectId string    `pg:"project_id, type:varchar"`
	Status    string    `pg:"status, type:varchar"`
	CreatedAt time.Time `pg:"created_at, type:timestamp without time zone"`
}

type ProjectEntity struct {
	tableName struct{} `pg:"project"`

	Id        string    `pg:"id, pk, type:varchar"`
	FacultyId string    `pg:"faculty_id, type:varchar"`
	Title     string    `pg:"title, type:varchar"`
	CreatedAt time.Time `pg:"created_at, type:timestamp without time zone"`
}

type PostEntity struct {
	tableName struct{} `pg:"post"`

	Id        string    `pg:"id, pk, type:varchar"`
	AuthorId  string    `pg:"author_id, type:varchar"`
	Content   string    `pg:"content, type:text"`
	CreatedAt time.Time `pg:"created_at, type:timestamp without time zone"`
}

type NotificationEntity struct {
	tableName struct{} `pg:"notification"`

	Id        string    `pg:"id, pk, type:varchar"`
	UserId    string    `pg:"user_id, type:varchar"`
	Message   string    `pg:"message, type:text"`
	CreatedAt time.Time `pg:"created_at, type:timestamp without time zone"`
}

type ActivityLogEntity struct {
	tableName struct{} `pg:"activity_log"`

	Id        string                 `pg:"id, pk, type:varchar"`
	UserId    string                 `pg:"user_id, type:varchar"`
	Action    string                 `pg:"action, type:varchar"`
	Data      map[string]interface{} `pg:"data, type:jsonb"`
	CreatedAt time.Time              `pg:"created_at, type:timestamp without time zone"`
}

// OwnedTable describes a table whose rows belong to a user through one or more owner columns.
// A row is owned when any of the owner columns equals the user id.
type OwnedTable struct {
	Name         string
	OwnerColumns []string
	NewModel     func() interface{}
}

func UserOwnedTables() []OwnedTable {
	return []OwnedTable{
		{Name: "message", OwnerColumns: []string{"sender_id", "receiver_id"}, NewModel: func() interface{} { return &MessageEntity{} }},
		{Name: "application", OwnerColumns: []string{"student_id"}, NewModel: func() interface{} { return &ApplicationEntity{} }},
		{Name: "project", OwnerColumns: []string{"faculty_id"}, NewModel: func() interface{} { return &ProjectEntity{} }},
		{Name: "post", OwnerColumns: []string{"author_id"}, NewModel: func() interface{} { return &PostEntity{} }},
		{Name: "notification", OwnerColumns: []string{"user_id"}, NewModel: func() interface{} { return &NotificationEntity{} }},
		{Name: "activity_log", OwnerColumns: []string{"user_id"}, NewModel: func() interface{} { return &ActivityLogEntity{} }},
	}
}
