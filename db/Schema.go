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

package db

import (
	"context"
	"fmt"

	"github.com/go-pg/pg/v10"
	log "github.com/sirupsen/logrus"
)

// owner columns are indexed so the sweep and the verification queries never scan whole tables
var schemaStatements = []string{
	`create table if not exists users (
		id varchar primary key,
		email varchar not null default '',
		name varchar not null default '',
		role varchar not null default '',
		department varchar not null default '',
		created_at timestamp without time zone not null default now()
	)`,
	`create table if not exists deferred_deletion (
		id varchar primary key,
		original_user_id varchar not null,
		snapshot text not null,
		scheduled_at timestamp without time zone not null,
		due_at timestamp without time zone not null,
		executed_at timestamp without time zone,
		status varchar not null
	)`,
	`create index if not exists deferred_deletion_status_due_at_idx on deferred_deletion (status, due_at)`,
	`create index if not exists deferred_deletion_original_user_id_idx on deferred_deletion (original_user_id)`,
	`create table if not exists message (
		id varchar primary key,
		sender_id varchar,
		receiver_id varchar,
		body text,
		sent_at timestamp without time zone
	)`,
	`create index if not exists message_sender_id_idx on message (sender_id)`,
	`create index if not exists message_receiver_id_idx on message (receiver_id)`,
	`create table if not exists application (
		id varchar primary key,
		student_id varchar,
		project_id varchar,
		status varchar,
		created_at timestamp without time zone
	)`,
	`create index if not exists application_student_id_idx on application (student_id)`,
	`create table if not exists project (
		id varchar primary key,
		faculty_id varchar,
		title varchar,
		created_at timestamp without time zone
	)`,
	`create index if not exists project_faculty_id_idx on project (faculty_id)`,
	`create table if not exists post (
		id varchar primary key,
		author_id varchar,
		content text,
		created_at timestamp without time zone
	)`,
	`create index if not exists post_author_id_idx on post (author_id)`,
	`create table if not exists notification (
		id varchar primary key,
		user_id varchar,
		message text,
		created_at timestamp without time zone
	)`,
	`create index if not exists notification_user_id_idx on notification (user_id)`,
	`create table if not exists activity_log (
		id varchar primary key,
		user_id varchar,
		action varchar,
		data jsonb,
		created_at timestamp without time zone
	)`,
	`create index if not exists activity_log_user_id_idx on activity_log (user_id)`,
	`create table if not exists deletion_sweep_run (
		run_id varchar primary key,
		instance_id varchar,
		started_at timestamp without time zone not null,
		finished_at timestamp without time zone,
		status varchar not null,
		details varchar,
		result jsonb
	)`,
	`create table if not exists service_lock (
		name varchar primary key,
		holder_id varchar not null,
		acquired_at timestamp without time zone not null,
		expires_at timestamp without time zone not null,
		version bigint not null default 1
	)`,
}

func InitSchema(ctx context.Context, cp ConnectionProvider) error {
	err := cp.GetConnection().RunInTransaction(ctx, func(tx *pg.Tx) error {
		for _, stmt := range schemaStatements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema statement: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debugf("Database schema is up to date (%d statements)", len(schemaStatements))
	return nil
}
