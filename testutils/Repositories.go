package testutils

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/repository"
	"github.com/research-marketplace/account-deletion-service/view"
)

var ErrInjected = errors.New("injected failure")

// UserRepository keeps users in memory. Zero value is not usable, use NewUserRepository.
type UserRepository struct {
	mu        sync.Mutex
	users     map[string]entity.UserEntity
	DeleteErr error
}

func NewUserRepository(users ...entity.UserEntity) *UserRepository {
	r := &UserRepository{users: make(map[string]entity.UserEntity)}
	for _, u := range users {
		r.users[u.Id] = u
	}
	return r
}

func (r *UserRepository) GetUserById(ctx context.Context, userId string) (*entity.UserEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userId]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entity.UserEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.Id] = *user
	return nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *entity.UserEntity) error {
	return r.CreateUser(ctx, user)
}

func (r *UserRepository) DeleteUser(ctx context.Context, userId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.DeleteErr != nil {
		return r.DeleteErr
	}
	delete(r.users, userId)
	return nil
}

func (r *UserRepository) Exists(userId string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[userId]
	return ok
}

type DeferredDeletionRepository struct {
	mu              sync.Mutex
	records         []entity.DeferredDeletionEntity
	CreateErr       error
	GetDueErr       error
	MarkExecutedErr error
}

func NewDeferredDeletionRepository(records ...entity.DeferredDeletionEntity) *DeferredDeletionRepository {
	return &DeferredDeletionRepository{records: records}
}

func (r *DeferredDeletionRepository) CreateDeferredDeletion(ctx context.Context, ent *entity.DeferredDeletionEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.records = append(r.records, *ent)
	return nil
}

func (r *DeferredDeletionRepository) GetDueDeferredDeletions(ctx context.Context, now time.Time) ([]entity.DeferredDeletionEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetDueErr != nil {
		return nil, r.GetDueErr
	}
	result := make([]entity.DeferredDeletionEntity, 0)
	for _, rec := range r.records {
		if rec.Status == string(view.DeletionScheduled) && rec.ExecutedAt == nil && !rec.DueAt.After(now) {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].DueAt.Before(result[j].DueAt) })
	return result, nil
}

func (r *DeferredDeletionRepository) GetDeferredDeletionsByUserId(ctx context.Context, userId string) ([]entity.DeferredDeletionEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entity.DeferredDeletionEntity, 0)
	for _, rec := range r.records {
		if rec.OriginalUserId == userId {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *DeferredDeletionRepository) MarkExecuted(ctx context.Context, id string, executedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.MarkExecutedErr != nil {
		return false, r.MarkExecutedErr
	}
	for i := range r.records {
		if r.records[i].Id != id {
			continue
		}
		if r.records[i].ExecutedAt != nil {
			return false, nil
		}
		at := executedAt
		r.records[i].ExecutedAt = &at
		r.records[i].Status = string(view.DeletionExecuted)
		return true, nil
	}
	return false, nil
}

func (r *DeferredDeletionRepository) Records() []entity.DeferredDeletionEntity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.DeferredDeletionEntity(nil), r.records...)
}

// OwnedRow is a row of a user owned table, keyed by owner column.
type OwnedRow struct {
	Id     string
	Owners map[string]string
}

// UserOwnedDataRepository keeps rows per table. DeleteErrs is keyed by row id, CountErrs by table name.
type UserOwnedDataRepository struct {
	mu         sync.Mutex
	rows       map[string][]OwnedRow
	DeleteErrs map[string]error
	CountErrs  map[string]error
}

func NewUserOwnedDataRepository() *UserOwnedDataRepository {
	return &UserOwnedDataRepository{
		rows:       make(map[string][]OwnedRow),
		DeleteErrs: make(map[string]error),
		CountErrs:  make(map[string]error),
	}
}

func (r *UserOwnedDataRepository) AddRow(table string, row OwnedRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[table] = append(r.rows[table], row)
}

func (r *UserOwnedDataRepository) FindOwnedRowIds(ctx context.Context, table entity.OwnedTable, userId string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for _, row := range r.rows[table.Name] {
		if ownedBy(row, table, userId) {
			ids = append(ids, row.Id)
		}
	}
	return ids, nil
}

func (r *UserOwnedDataRepository) DeleteOwnedRow(ctx context.Context, table entity.OwnedTable, rowId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.DeleteErrs[rowId]; err != nil {
		return err
	}
	rows := r.rows[table.Name]
	for i, row := range rows {
		if row.Id == rowId {
			r.rows[table.Name] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *UserOwnedDataRepository) CountOwnedRows(ctx context.Context, table entity.OwnedTable, userId string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.CountErrs[table.Name]; err != nil {
		return 0, err
	}
	count := 0
	for _, row := range r.rows[table.Name] {
		if ownedBy(row, table, userId) {
			count++
		}
	}
	return count, nil
}

func ownedBy(row OwnedRow, table entity.OwnedTable, userId string) bool {
	for _, column := range table.OwnerColumns {
		if row.Owners[column] == userId {
			return true
		}
	}
	return false
}

type DeletionSweepRunRepository struct {
	mu   sync.Mutex
	runs []entity.DeletionSweepRunEntity
}

func NewDeletionSweepRunRepository() *DeletionSweepRunRepository {
	return &DeletionSweepRunRepository{}
}

func (r *DeletionSweepRunRepository) StoreSweepRun(ctx context.Context, ent entity.DeletionSweepRunEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, ent)
	return nil
}

func (r *DeletionSweepRunRepository) UpdateSweepRun(ctx context.Context, runId string, status string, details string, result *view.SweepResult, finishedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.runs {
		if r.runs[i].RunId != runId {
			continue
		}
		if status != "" {
			r.runs[i].Status = status
		}
		if details != "" {
			r.runs[i].Details = details
		}
		if result != nil {
			r.runs[i].Result = result
		}
		if finishedAt != nil {
			r.runs[i].FinishedAt = finishedAt
		}
	}
	return nil
}

func (r *DeletionSweepRunRepository) GetLatestSweepRuns(ctx context.Context, limit int) ([]entity.DeletionSweepRunEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	runs := append([]entity.DeletionSweepRunEntity(nil), r.runs...)
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// LockRepository mirrors the lease semantics of the database lock table.
type LockRepository struct {
	mu    sync.Mutex
	clock clock.Clock
	locks map[string]entity.LockEntity
}

func NewLockRepository(clk clock.Clock) *LockRepository {
	return &LockRepository{clock: clk, locks: make(map[string]entity.LockEntity)}
}

func (r *LockRepository) TryAcquireLock(ctx context.Context, lockName string, holderId string, lease time.Duration) (*entity.LockEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now().UTC()
	existing, ok := r.locks[lockName]
	if ok && !existing.ExpiredAt(now) {
		return nil, repository.ErrLockHeldByOther
	}
	lock := entity.LockEntity{Name: lockName, HolderId: holderId, AcquiredAt: now, ExpiresAt: now.Add(lease), Version: existing.Version + 1}
	r.locks[lockName] = lock
	return &lock, nil
}

func (r *LockRepository) ExtendLock(ctx context.Context, lock *entity.LockEntity, lease time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.locks[lock.Name]
	if !ok || existing.HolderId != lock.HolderId || existing.Version != lock.Version {
		return repository.ErrLockLost
	}
	existing.ExpiresAt = r.clock.Now().UTC().Add(lease)
	existing.Version++
	r.locks[lock.Name] = existing
	lock.ExpiresAt = existing.ExpiresAt
	lock.Version = existing.Version
	return nil
}

func (r *LockRepository) ReleaseLock(ctx context.Context, lock *entity.LockEntity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.locks[lock.Name]
	if !ok || existing.HolderId != lock.HolderId || existing.Version != lock.Version {
		return nil
	}
	existing.ExpiresAt = r.clock.Now().UTC().Add(-time.Second)
	existing.Version++
	r.locks[lock.Name] = existing
	return nil
}

func (r *LockRepository) GetLock(ctx context.Context, lockName string) (*entity.LockEntity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[lockName]
	if !ok {
		return nil, repository.ErrLockNotFound
	}
	return &lock, nil
}

// Steal hands the lock to another holder, as if this holder's lease had been taken over.
func (r *LockRepository) Steal(lockName string, holderId string, lease time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := r.locks[lockName]
	now := r.clock.Now().UTC()
	r.locks[lockName] = entity.LockEntity{Name: lockName, HolderId: holderId, AcquiredAt: now, ExpiresAt: now.Add(lease), Version: existing.Version + 1}
}
