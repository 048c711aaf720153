package jobs

import (
	"context"
	"errors"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"
	"learnhub_backend/pkg/storage"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BackupJob 定时把当前文档复制到按日期命名的备份键
type BackupJob struct {
	Store  *repository.StateStore
	Prefix string
	Now    func() time.Time
}

func NewBackupJob(store *repository.StateStore, prefix string) *BackupJob {
	return &BackupJob{Store: store, Prefix: prefix, Now: time.Now}
}

// Key 当天的备份键，同一天重复执行会覆盖
func (j *BackupJob) Key() string {
	return j.Prefix + "_" + j.Now().Format(util.DateFormat)
}

func (j *BackupJob) Run(ctx context.Context) error {
	key := j.Key()
	size, err := j.Store.Snapshot(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Log.Debug("No document yet, skipping backup")
		return nil
	}
	if err != nil {
		logger.Log.Error("Backup failed", zap.String("key", key), zap.Error(err))
		return err
	}
	logger.Log.Info("Backup written", zap.String("key", key), zap.Int("bytes", size))
	return nil
}

// Schedule 注册到调度器；spec 为标准 cron 表达式或 @daily 等描述符
func Schedule(c *cron.Cron, spec string, job *BackupJob) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_ = job.Run(ctx)
	})
}
