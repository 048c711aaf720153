package jobs

import (
	"context"
	"learnhub_backend/internal/config"
	"learnhub_backend/internal/repository"
	"learnhub_backend/pkg/storage"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(t *testing.T) (*BackupJob, storage.Backend) {
	t.Helper()
	backend := storage.NewMemory(0)
	store := repository.NewStateStore(backend, config.Default(), nil)
	job := NewBackupJob(store, "learnhub_backup")
	job.Now = func() time.Time { return time.Date(2024, 3, 10, 2, 0, 0, 0, time.Local) }
	return job, backend
}

func TestBackupJobKey(t *testing.T) {
	job, _ := newJob(t)
	assert.Equal(t, "learnhub_backup_2024-03-10", job.Key())
}

func TestBackupJobCopiesDocument(t *testing.T) {
	ctx := context.Background()
	job, backend := newJob(t)
	job.Store.Load(ctx)

	require.NoError(t, job.Run(ctx))

	original, err := backend.Get(ctx, config.DefaultStorageKey)
	require.NoError(t, err)
	backup, err := backend.Get(ctx, "learnhub_backup_2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, original, backup)
}

func TestBackupJobSkipsEmptyStore(t *testing.T) {
	ctx := context.Background()
	job, backend := newJob(t)

	require.NoError(t, job.Run(ctx))

	_, err := backend.Get(ctx, "learnhub_backup_2024-03-10")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	job, _ := newJob(t)
	c := cron.New()

	_, err := Schedule(c, "not a schedule", job)
	assert.Error(t, err)

	_, err = Schedule(c, "@daily", job)
	assert.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}
