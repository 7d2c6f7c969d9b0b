package service

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLockName = "test_lock"

func TestLockService_SecondHolderIsRejectedUntilRelease(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := testutils.NewLockRepository(clk)
	first := NewLockService(repo, "instance-1", clk)
	second := NewLockService(repo, "instance-2", clk)
	ctx := context.Background()
	options := LockOptions{Lease: time.Minute, HeartbeatInterval: 20 * time.Second}

	acquired, _, err := first.AcquireLock(ctx, testLockName, options)
	require.NoError(t, err)
	assert.True(t, acquired)

	acquired, _, err = second.AcquireLock(ctx, testLockName, options)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, first.ReleaseLock(ctx, testLockName))

	acquired, _, err = second.AcquireLock(ctx, testLockName, options)
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.ReleaseLock(ctx, testLockName))
}

func TestLockService_HeartbeatExtendsLease(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := testclock.NewClock(start)
	repo := testutils.NewLockRepository(clk)
	locks := NewLockService(repo, "instance-1", clk)
	ctx := context.Background()

	acquired, _, err := locks.AcquireLock(ctx, testLockName, LockOptions{Lease: time.Minute, HeartbeatInterval: 20 * time.Second})
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, clk.WaitAdvance(20*time.Second, time.Second, 1))
	// the next heartbeat registers only after the extension is stored
	require.NoError(t, clk.WaitAdvance(0, time.Second, 1))

	lock, err := repo.GetLock(ctx, testLockName)
	require.NoError(t, err)
	assert.Equal(t, start.Add(80*time.Second), lock.ExpiresAt)
	require.NoError(t, locks.ReleaseLock(ctx, testLockName))
}

func TestLockService_NotifiesWhenLockIsLost(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := testutils.NewLockRepository(clk)
	locks := NewLockService(repo, "instance-1", clk)
	ctx := context.Background()

	acquired, lost, err := locks.AcquireLock(ctx, testLockName, LockOptions{Lease: time.Minute, HeartbeatInterval: 20 * time.Second, NotifyOnLoss: true})
	require.NoError(t, err)
	require.True(t, acquired)
	require.NotNil(t, lost)

	repo.Steal(testLockName, "instance-2", time.Minute)
	require.NoError(t, clk.WaitAdvance(20*time.Second, time.Second, 1))

	select {
	case event := <-lost:
		assert.Equal(t, testLockName, event.LockName)
		assert.Equal(t, "instance-1", event.HolderId)
	case <-time.After(5 * time.Second):
		t.Fatal("lock loss was not reported")
	}

	require.NoError(t, locks.ReleaseLock(ctx, testLockName))
	lock, err := repo.GetLock(ctx, testLockName)
	require.NoError(t, err)
	assert.Equal(t, "instance-2", lock.HolderId)
}

// blockingExtendRepository holds ExtendLock until proceed is closed, ignoring cancellation like a query already sent.
type blockingExtendRepository struct {
	*testutils.LockRepository
	entered chan struct{}
	proceed chan struct{}
}

func (r *blockingExtendRepository) ExtendLock(ctx context.Context, lock *entity.LockEntity, lease time.Duration) error {
	r.entered <- struct{}{}
	<-r.proceed
	return r.LockRepository.ExtendLock(ctx, lock, lease)
}

func TestLockService_ReleaseDuringExtensionFreesLock(t *testing.T) {
	clk := testclock.NewClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	repo := &blockingExtendRepository{
		LockRepository: testutils.NewLockRepository(clk),
		entered:        make(chan struct{}, 1),
		proceed:        make(chan struct{}),
	}
	first := NewLockService(repo, "instance-1", clk)
	second := NewLockService(repo, "instance-2", clk)
	ctx := context.Background()
	options := LockOptions{Lease: time.Minute, HeartbeatInterval: 20 * time.Second}

	acquired, _, err := first.AcquireLock(ctx, testLockName, options)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, clk.WaitAdvance(20*time.Second, time.Second, 1))
	<-repo.entered

	released := make(chan error, 1)
	go func() {
		released <- first.ReleaseLock(ctx, testLockName)
	}()
	select {
	case err = <-released:
		t.Fatalf("release finished while the extension was in flight: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(repo.proceed)
	select {
	case err = <-released:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("release did not finish after the extension completed")
	}

	lock, err := repo.GetLock(ctx, testLockName)
	require.NoError(t, err)
	assert.True(t, lock.ExpiredAt(clk.Now()))

	acquired, _, err = second.AcquireLock(ctx, testLockName, options)
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.ReleaseLock(ctx, testLockName))
}

func TestLockService_RejectsEmptyName(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	locks := NewLockService(testutils.NewLockRepository(clk), "instance-1", clk)

	_, _, err := locks.AcquireLock(context.Background(), "", LockOptions{})
	assert.Error(t, err)
	assert.Error(t, locks.ReleaseLock(context.Background(), ""))
}

func TestNormalizeLockOptions(t *testing.T) {
	options := normalizeLockOptions(LockOptions{})
	assert.Equal(t, defaultLease, options.Lease)
	assert.Equal(t, defaultHeartbeatInterval, options.HeartbeatInterval)

	options = normalizeLockOptions(LockOptions{Lease: 30 * time.Second, HeartbeatInterval: time.Minute})
	assert.Equal(t, 10*time.Second, options.HeartbeatInterval)
}
