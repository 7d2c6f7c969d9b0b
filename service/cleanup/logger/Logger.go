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

package logger

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	jobTypeKey contextKey = "jobType"
	jobIdKey   contextKey = "jobId"
)

// WithJob tags ctx so that every message logged through this package is prefixed with the job type and run id.
func WithJob(ctx context.Context, jobType string, jobId string) context.Context {
	ctx = context.WithValue(ctx, jobTypeKey, jobType)
	return context.WithValue(ctx, jobIdKey, jobId)
}

func JobId(ctx context.Context) string {
	jobId, _ := ctx.Value(jobIdKey).(string)
	return jobId
}

func getJobPrefix(ctx context.Context) string {
	jobType, _ := ctx.Value(jobTypeKey).(string)
	jobId, _ := ctx.Value(jobIdKey).(string)

	if jobType != "" && jobId != "" {
		return fmt.Sprintf("[%s] [id=%s] ", jobType, jobId)
	}
	return ""
}

func Debugf(ctx context.Context, format string, args ...interface{}) {
	log.Debug(getJobPrefix(ctx) + fmt.Sprintf(format, args...))
}

func Debug(ctx context.Context, args ...interface{}) {
	log.Debug(getJobPrefix(ctx) + fmt.Sprint(args...))
}

func Infof(ctx context.Context, format string, args ...interface{}) {
	log.Info(getJobPrefix(ctx) + fmt.Sprintf(format, args...))
}

func Info(ctx context.Context, args ...interface{}) {
	log.Info(getJobPrefix(ctx) + fmt.Sprint(args...))
}

func Warnf(ctx context.Context, format string, args ...interface{}) {
	log.Warn(getJobPrefix(ctx) + fmt.Sprintf(format, args...))
}

func Errorf(ctx context.Context, format string, args ...interface{}) {
	log.Error(getJobPrefix(ctx) + fmt.Sprintf(format, args...))
}
