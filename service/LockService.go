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

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/utils"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLease             = 60 * time.Second
	defaultHeartbeatInterval = 20 * time.Second
	maxRetries               = 3
)

type LockLostEvent struct {
	LockName string
	HolderId string
	Reason   string
}

type LockOptions struct {
	Lease             time.Duration
	HeartbeatInterval time.Duration
	NotifyOnLoss      bool
}

type LockService interface {
	// AcquireLock returns false without error when another instance holds a live lease.
	// While held, the lease is extended in the background until ReleaseLock or ctx cancellation.
	AcquireLock(ctx context.Context, lockName string, options LockOptions) (bool, <-chan LockLostEvent, error)
	ReleaseLock(ctx context.Context, lockName string) error
}

type heldLock struct {
	lock   entity.LockEntity
	cancel context.CancelFunc
	notify chan LockLostEvent
	// closed when the heartbeat goroutine exits, after its last extension is stored in lock
	done chan struct{}
}

type lockServiceImpl struct {
	lockRepo repository.LockRepository
	holderId string
	clock    clock.Clock
	mu       sync.Mutex
	held     map[string]*heldLock
}

func NewLockService(lockRepo repository.LockRepository, holderId string, clk clock.Clock) LockService {
	return &lockServiceImpl{
		lockRepo: lockRepo,
		holderId: holderId,
		clock:    clk,
		held:     make(map[string]*heldLock),
	}
}

func (s *lockServiceImpl) AcquireLock(ctx context.Context, lockName string, options LockOptions) (bool, <-chan LockLostEvent, error) {
	if lockName == "" {
		return false, nil, fmt.Errorf("lock name cannot be empty")
	}
	options = normalizeLockOptions(options)

	lock, err := s.lockRepo.TryAcquireLock(ctx, lockName, s.holderId, options.Lease)
	if err != nil {
		if errors.Is(err, repository.ErrLockHeldByOther) {
			return false, nil, nil
		}
		return false, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if previous, exists := s.held[lockName]; exists {
		previous.cancel()
	}
	heartbeatCtx, cancel := context.WithCancel(ctx)
	held := &heldLock{lock: *lock, cancel: cancel, done: make(chan struct{})}
	if options.NotifyOnLoss {
		held.notify = make(chan LockLostEvent, 1)
	}
	s.held[lockName] = held

	utils.SafeAsync(func() {
		defer close(held.done)
		s.runHeartbeat(heartbeatCtx, held, lockName, options)
	})

	log.Debugf("Acquired lock %s with lease %s and heartbeat %s", lockName, options.Lease, options.HeartbeatInterval)
	return true, held.notify, nil
}

func (s *lockServiceImpl) ReleaseLock(ctx context.Context, lockName string) error {
	if lockName == "" {
		return fmt.Errorf("lock name cannot be empty")
	}

	s.mu.Lock()
	held, exists := s.held[lockName]
	if exists {
		held.cancel()
		delete(s.held, lockName)
		if held.notify != nil {
			close(held.notify)
		}
	}
	s.mu.Unlock()

	if !exists {
		log.Debugf("Lock %s is not held by %s, nothing to release", lockName, s.holderId)
		return nil
	}

	// an extension still in flight bumps the version the release is guarded by
	select {
	case <-held.done:
	case <-ctx.Done():
		return fmt.Errorf("failed to wait for heartbeat of lock %s to stop: %w", lockName, ctx.Err())
	}
	s.mu.Lock()
	lock := held.lock
	s.mu.Unlock()

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = s.lockRepo.ReleaseLock(ctx, &lock); err == nil {
			log.Debugf("Released lock %s", lockName)
			return nil
		}
		log.Warnf("Failed to release lock %s (attempt %d/%d): %v", lockName, i+1, maxRetries, err)
		if waitErr := s.waitWithBackoff(ctx, i); waitErr != nil {
			return fmt.Errorf("failed to wait with backoff: %w", waitErr)
		}
	}
	return fmt.Errorf("failed to release lock after %d attempts: %w", maxRetries, err)
}

func normalizeLockOptions(options LockOptions) LockOptions {
	if options.Lease <= 0 {
		options.Lease = defaultLease
	}
	if options.HeartbeatInterval <= 0 {
		options.HeartbeatInterval = defaultHeartbeatInterval
	}
	if options.HeartbeatInterval >= options.Lease {
		options.HeartbeatInterval = options.Lease / 3
	}
	return options
}

func (s *lockServiceImpl) waitWithBackoff(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(100 * time.Millisecond * time.Duration(attempt+1)):
		return nil
	}
}

func (s *lockServiceImpl) runHeartbeat(ctx context.Context, held *heldLock, lockName string, options LockOptions) {
	defer log.Debugf("Heartbeat for lock %s stopped", lockName)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.clock.After(options.HeartbeatInterval):
			if err := s.extendLease(ctx, held, lockName, options.Lease); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Errorf("Lock %s lost: %v", lockName, err)
				s.notifyLockLost(held, lockName, err.Error())
				return
			}
			log.Tracef("Extended lock %s", lockName)
		}
	}
}

func (s *lockServiceImpl) extendLease(ctx context.Context, held *heldLock, lockName string, lease time.Duration) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.mu.Lock()
	lock := held.lock
	s.mu.Unlock()

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.lockRepo.ExtendLock(ctx, &lock, lease)
		if err == nil {
			s.mu.Lock()
			held.lock = lock
			s.mu.Unlock()
			return nil
		}
		if errors.Is(err, repository.ErrLockLost) || ctx.Err() != nil {
			return err
		}
		log.Warnf("Failed to extend lock %s (attempt %d/%d): %v", lockName, i+1, maxRetries, err)
		if waitErr := s.waitWithBackoff(ctx, i); waitErr != nil {
			return waitErr
		}
	}
	return fmt.Errorf("failed to extend lock after %d attempts: %w", maxRetries, err)
}

func (s *lockServiceImpl) notifyLockLost(held *heldLock, lockName string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, exists := s.held[lockName]; !exists || current != held {
		return
	}
	delete(s.held, lockName)
	held.cancel()
	if held.notify == nil {
		return
	}
	held.notify <- LockLostEvent{LockName: lockName, HolderId: s.holderId, Reason: reason}
	close(held.notify)
}
