package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/research-marketplace/account-deletion-service/db"
	"github.com/research-marketplace/account-deletion-service/entity"
)

var (
	ErrLockHeldByOther = errors.New("lock is held by another instance")
	ErrLockNotFound    = errors.New("lock not found")
	ErrLockLost        = errors.New("lock lease was lost")
)

const clockSkewMargin = 10 * time.Second

type LockRepository interface {
	// TryAcquireLock inserts the lock or takes over an expired one. Returns false if another holder owns a live lease.
	TryAcquireLock(ctx context.Context, lockName string, holderId string, lease time.Duration) (*entity.LockEntity, error)
	// ExtendLock prolongs a lease owned by holderId; the version guards against concurrent takeover.
	ExtendLock(ctx context.Context, lock *entity.LockEntity, lease time.Duration) error
	ReleaseLock(ctx context.Context, lock *entity.LockEntity) error
	GetLock(ctx context.Context, lockName string) (*entity.LockEntity, error)
}

func NewLockRepository(cp db.ConnectionProvider) LockRepository {
	return &lockRepositoryImpl{cp: cp}
}

type lockRepositoryImpl struct {
	cp db.ConnectionProvider
}

func (r lockRepositoryImpl) TryAcquireLock(ctx context.Context, lockName string, holderId string, lease time.Duration) (*entity.LockEntity, error) {
	now := time.Now().UTC()
	lock := &entity.LockEntity{
		Name:       lockName,
		HolderId:   holderId,
		AcquiredAt: now,
		ExpiresAt:  now.Add(lease),
		Version:    1,
	}

	existing, err := r.GetLock(ctx, lockName)
	if err != nil && !errors.Is(err, ErrLockNotFound) {
		return nil, err
	}
	if existing == nil {
		_, err = r.cp.GetConnection().ModelContext(ctx, lock).Insert()
		if err != nil {
			if pgErr, ok := err.(pg.Error); ok && pgErr.IntegrityViolation() {
				return nil, ErrLockHeldByOther
			}
			return nil, fmt.Errorf("failed to insert lock: %w", err)
		}
		return lock, nil
	}

	if !existing.ExpiredAt(now.Add(-clockSkewMargin)) {
		return nil, ErrLockHeldByOther
	}

	lock.Version = existing.Version + 1
	result, err := r.cp.GetConnection().ModelContext(ctx, &entity.LockEntity{}).
		Set("holder_id = ?, acquired_at = ?, expires_at = ?, version = ?", holderId, lock.AcquiredAt, lock.ExpiresAt, lock.Version).
		Where("name = ? AND version = ?", lockName, existing.Version).
		Update()
	if err != nil {
		return nil, fmt.Errorf("failed to take over expired lock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrLockHeldByOther
	}
	return lock, nil
}

func (r lockRepositoryImpl) ExtendLock(ctx context.Context, lock *entity.LockEntity, lease time.Duration) error {
	expiresAt := time.Now().UTC().Add(lease)
	result, err := r.cp.GetConnection().ModelContext(ctx, &entity.LockEntity{}).
		Set("expires_at = ?, version = version + 1", expiresAt).
		Where("name = ? AND holder_id = ? AND version = ?", lock.Name, lock.HolderId, lock.Version).
		Update()
	if err != nil {
		return fmt.Errorf("failed to extend lock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLockLost
	}
	lock.ExpiresAt = expiresAt
	lock.Version++
	return nil
}

func (r lockRepositoryImpl) ReleaseLock(ctx context.Context, lock *entity.LockEntity) error {
	_, err := r.cp.GetConnection().ModelContext(ctx, &entity.LockEntity{}).
		Set("expires_at = ?, version = version + 1", time.Now().UTC().Add(-clockSkewMargin)).
		Where("name = ? AND holder_id = ? AND version = ?", lock.Name, lock.HolderId, lock.Version).
		Update()
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

func (r lockRepositoryImpl) GetLock(ctx context.Context, lockName string) (*entity.LockEntity, error) {
	var lock entity.LockEntity
	err := r.cp.GetConnection().ModelContext(ctx, &lock).
		Where("name = ?", lockName).
		Select()
	if err != nil {
		if errors.Is(err, pg.ErrNoRows) {
			return nil, ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to get lock: %w", err)
	}
	return &lock, nil
}
