package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/research-marketplace/account-deletion-service/config"
	"github.com/research-marketplace/account-deletion-service/entity"
	"github.com/research-marketplace/account-deletion-service/service"
	"github.com/research-marketplace/account-deletion-service/testutils"
	"github.com/research-marketplace/account-deletion-service/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type sweepFixture struct {
	clock        *testclock.Clock
	users        *testutils.UserRepository
	deletions    *testutils.DeferredDeletionRepository
	owned        *testutils.UserOwnedDataRepository
	runs         *testutils.DeletionSweepRunRepository
	locks        *testutils.LockRepository
	storage      *testutils.ObjectStorage
	scheduler    service.DeletionSchedulerService
	verification service.VerificationService
	runner       *JobRunner
}

func newSweepFixture() *sweepFixture {
	f := &sweepFixture{
		clock: testclock.NewClock(t0),
		users: testutils.NewUserRepository(
			entity.UserEntity{Id: "u1", Email: "u1@uni.edu", Role: "student"},
			entity.UserEntity{Id: "u3", Email: "u3@uni.edu", Role: "faculty"},
			entity.UserEntity{Id: "u10", Email: "u10@uni.edu", Role: "student"},
		),
		deletions: testutils.NewDeferredDeletionRepository(),
		owned:     testutils.NewUserOwnedDataRepository(),
		runs:      testutils.NewDeletionSweepRunRepository(),
		storage:   testutils.NewObjectStorage("u1/cv.pdf", "u1/thesis/draft.docx", "u3/grant.pdf", "u10/cv.pdf"),
	}
	f.locks = testutils.NewLockRepository(f.clock)

	f.owned.AddRow("message", testutils.OwnedRow{Id: "m1", Owners: map[string]string{"sender_id": "u1", "receiver_id": "u3"}})
	f.owned.AddRow("message", testutils.OwnedRow{Id: "m2", Owners: map[string]string{"sender_id": "u10", "receiver_id": "u1"}})
	f.owned.AddRow("message", testutils.OwnedRow{Id: "m3", Owners: map[string]string{"sender_id": "u10", "receiver_id": "u3"}})
	f.owned.AddRow("application", testutils.OwnedRow{Id: "a1", Owners: map[string]string{"student_id": "u1"}})
	f.owned.AddRow("application", testutils.OwnedRow{Id: "a10", Owners: map[string]string{"student_id": "u10"}})
	f.owned.AddRow("project", testutils.OwnedRow{Id: "pr3", Owners: map[string]string{"faculty_id": "u3"}})
	f.owned.AddRow("post", testutils.OwnedRow{Id: "po1", Owners: map[string]string{"author_id": "u1"}})
	f.owned.AddRow("post", testutils.OwnedRow{Id: "po3", Owners: map[string]string{"author_id": "u3"}})
	f.owned.AddRow("notification", testutils.OwnedRow{Id: "n1", Owners: map[string]string{"user_id": "u1"}})
	f.owned.AddRow("activity_log", testutils.OwnedRow{Id: "l3", Owners: map[string]string{"user_id": "u3"}})

	deletionConfig := config.DeletionConfig{DelayDays: 90, TestModeDelayHours: 24, FileListPageSize: 1000}
	f.scheduler = service.NewDeletionSchedulerService(f.users, f.deletions, testutils.NewIdentityProvider(), deletionConfig, f.clock)
	f.verification = service.NewVerificationService(f.owned, f.deletions)

	processor := NewDeferredDeletionSweepProcessor(f.deletions, f.owned, f.runs, f.storage)
	lockService := service.NewLockService(f.locks, "instance-1", f.clock)
	f.runner = NewDeferredDeletionSweepRunner(processor, lockService, "instance-1", time.Minute, f.clock)
	return f
}

func (f *sweepFixture) schedule(t *testing.T, userId string, testMode bool) {
	_, err := f.scheduler.ScheduleUserDeletion(context.Background(), userId, testMode)
	require.NoError(t, err)
}

func (f *sweepFixture) record(t *testing.T, userId string) entity.DeferredDeletionEntity {
	records, err := f.deletions.GetDeferredDeletionsByUserId(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, records, 1)
	return records[0]
}

func TestSweep_ExecutesOnlyDueDeletions(t *testing.T) {
	f := newSweepFixture()
	f.schedule(t, "u1", true)

	f.clock.Advance(12 * time.Hour)
	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, string(view.DeletionScheduled), f.record(t, "u1").Status)
	assert.Contains(t, f.storage.Keys(), "u1/cv.pdf")

	f.clock.Advance(13 * time.Hour)
	result, err = f.runner.RunSweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, 2, result.FilesDeleted)
	assert.Equal(t, 5, result.RowsDeleted)
	assert.Empty(t, result.Errors)

	rec := f.record(t, "u1")
	assert.Equal(t, string(view.DeletionExecuted), rec.Status)
	require.NotNil(t, rec.ExecutedAt)
	assert.Equal(t, t0.Add(25*time.Hour), *rec.ExecutedAt)
	assert.Equal(t, []string{"u10/cv.pdf", "u3/grant.pdf"}, f.storage.Keys())

	report, err := f.verification.VerifyUserDeletion(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, report.DeletionComplete)

	report, err = f.verification.VerifyUserDeletion(context.Background(), "u10")
	require.NoError(t, err)
	assert.False(t, report.DeletionComplete)
}

func TestSweep_SecondSweepIsNoop(t *testing.T) {
	f := newSweepFixture()
	f.schedule(t, "u1", true)
	f.clock.Advance(25 * time.Hour)

	_, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)
	executedAt := f.record(t, "u1").ExecutedAt

	f.clock.Advance(time.Hour)
	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Equal(t, 0, result.Executed)
	assert.Equal(t, executedAt, f.record(t, "u1").ExecutedAt)
}

func TestSweep_TableFailureDoesNotStopOtherSteps(t *testing.T) {
	f := newSweepFixture()
	f.schedule(t, "u3", true)
	f.owned.DeleteErrs["pr3"] = testutils.ErrInjected
	f.clock.Advance(25 * time.Hour)

	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "u3", result.Errors[0].UserId)
	assert.Equal(t, "project", result.Errors[0].Step)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, string(view.DeletionExecuted), f.record(t, "u3").Status)
	assert.Equal(t, []string{"u1/cv.pdf", "u1/thesis/draft.docx", "u10/cv.pdf"}, f.storage.Keys())

	report, err := f.verification.VerifyUserDeletion(context.Background(), "u3")
	require.NoError(t, err)
	assert.False(t, report.DeletionComplete)
	for _, table := range report.Tables {
		if table.Table == "project" {
			assert.Equal(t, 1, table.Count)
		} else {
			assert.Equal(t, 0, table.Count, table.Table)
		}
	}

	runs, err := f.runs.GetLatestSweepRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, string(statusError), runs[0].Status)
	assert.Contains(t, runs[0].Details, "u3/project")
}

func TestSweep_StorageFailureIsSoft(t *testing.T) {
	f := newSweepFixture()
	f.schedule(t, "u1", true)
	f.storage.ListErr = testutils.ErrInjected
	f.clock.Advance(25 * time.Hour)

	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, FilesStep, result.Errors[0].Step)
	assert.Equal(t, 5, result.RowsDeleted)
	assert.Equal(t, 1, result.Executed)
}

func TestSweep_MarkExecutedFailureLeavesRecordForRetry(t *testing.T) {
	f := newSweepFixture()
	f.schedule(t, "u1", true)
	f.deletions.MarkExecutedErr = testutils.ErrInjected
	f.clock.Advance(25 * time.Hour)

	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, MarkExecutedStep, result.Errors[0].Step)
	assert.Equal(t, 0, result.Executed)
	assert.Equal(t, string(view.DeletionScheduled), f.record(t, "u1").Status)

	f.deletions.MarkExecutedErr = nil
	f.clock.Advance(time.Hour)
	result, err = f.runner.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, string(view.DeletionExecuted), f.record(t, "u1").Status)
}

func TestSweep_BrokenSnapshotFallsBackToOriginalUserId(t *testing.T) {
	f := newSweepFixture()
	require.NoError(t, f.deletions.CreateDeferredDeletion(context.Background(), &entity.DeferredDeletionEntity{
		Id:             "d1",
		OriginalUserId: "u1",
		Snapshot:       "{not json",
		ScheduledAt:    t0,
		DueAt:          t0,
		Status:         string(view.DeletionScheduled),
	}))

	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, SnapshotStep, result.Errors[0].Step)
	assert.Equal(t, 1, result.Executed)
	assert.Equal(t, 5, result.RowsDeleted)
}

func TestSweep_MissingUserIdIsHardFailure(t *testing.T) {
	f := newSweepFixture()
	require.NoError(t, f.deletions.CreateDeferredDeletion(context.Background(), &entity.DeferredDeletionEntity{
		Id:          "d1",
		Snapshot:    "{}",
		ScheduledAt: t0,
		DueAt:       t0,
		Status:      string(view.DeletionScheduled),
	}))

	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, SnapshotStep, result.Errors[1].Step)
	assert.Equal(t, 0, result.Executed)
	assert.Equal(t, 0, result.RowsDeleted)
	assert.Len(t, f.storage.Keys(), 4)
	assert.Nil(t, f.deletions.Records()[0].ExecutedAt)
}

func TestSweep_RowFailureDoesNotSkipRemainingRowsOfTable(t *testing.T) {
	f := newSweepFixture()
	f.schedule(t, "u1", true)
	f.owned.DeleteErrs["m1"] = testutils.ErrInjected
	f.clock.Advance(25 * time.Hour)

	result, err := f.runner.RunSweep(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "message", result.Errors[0].Step)
	assert.Contains(t, result.Errors[0].Error, "1 of 2 rows not deleted")
	assert.Equal(t, 4, result.RowsDeleted)

	ids, err := f.owned.FindOwnedRowIds(context.Background(), entity.UserOwnedTables()[0], "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, ids)
}
