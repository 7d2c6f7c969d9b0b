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
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	defaultCleanupJobTimeout = 48 * time.Hour
	cleanupJobTimeoutBuffer  = 1 * time.Hour
)

type CleanupService interface {
	CreateDeferredDeletionSweepJob(runner *JobRunner, schedule string) error
	// Stop prevents new runs; the returned context is done when running jobs have finished.
	Stop() context.Context
}

func NewCleanupService() CleanupService {
	return &cleanupServiceImpl{cron: cron.New(cron.WithLocation(time.UTC))}
}

type cleanupServiceImpl struct {
	cron    *cron.Cron
	started bool
}

func (c *cleanupServiceImpl) CreateDeferredDeletionSweepJob(runner *JobRunner, schedule string) error {
	return c.addCleanupJob(runner, schedule, deferredDeletionSweep)
}

func (c *cleanupServiceImpl) Stop() context.Context {
	return c.cron.Stop()
}

// SweepJobTimeout returns the configured timeout, or one derived from the schedule interval when none is configured.
func SweepJobTimeout(schedule string, timeoutMinutes int) time.Duration {
	if timeoutMinutes > 0 {
		return time.Duration(timeoutMinutes) * time.Minute
	}
	return calculateCleanupJobTimeout(schedule, deferredDeletionSweep)
}

func calculateCleanupJobTimeout(schedule string, jobType jobType) time.Duration {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Warnf("Failed to parse cron schedule '%s' for %s job: %v. Using default timeout.", schedule, jobType, err)
		return defaultCleanupJobTimeout
	}

	now := time.Now()
	next1 := sched.Next(now)
	next2 := sched.Next(next1)

	interval := next2.Sub(next1)
	if interval <= cleanupJobTimeoutBuffer {
		timeout := time.Duration(float64(interval) * 0.9)
		log.Debugf("Interval of cron schedule '%s' for %s job is short: %v. Using %v as timeout.",
			schedule, jobType, interval, timeout)
		return timeout
	}

	timeout := interval - cleanupJobTimeoutBuffer
	log.Infof("Calculated %s job timeout with schedule '%s': %v (interval: %v)",
		jobType, schedule, timeout, interval)
	return timeout
}

func (c *cleanupServiceImpl) addCleanupJob(job cron.Job, schedule string, jobType jobType) error {
	wrappedJob := cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(job)
	_, err := c.cron.AddJob(schedule, wrappedJob)
	if err != nil {
		log.Warnf("%s job wasn't added for schedule - %s. With error - %s", jobType, schedule, err)
		return err
	}
	if !c.started {
		c.cron.Start()
		c.started = true
	}
	log.Infof("%s job was created with schedule - %s", jobType, schedule)
	return nil
}
