package service

import (
	"context"
	"errors"
	"learnhub_backend/internal/repository"
	"learnhub_backend/internal/util"
	"learnhub_backend/pkg/logger"

	"go.uber.org/zap"
)

// ExportFile 导出结果，由控制器作为附件下发
type ExportFile struct {
	Filename string
	Data     []byte
}

// DataService 备份、导入与清空
type DataService struct {
	Store    *repository.StateStore
	Notifier *NotificationService
}

func NewDataService(store *repository.StateStore, notifier *NotificationService) *DataService {
	return &DataService{Store: store, Notifier: notifier}
}

// Export 导出完整文档
func (s *DataService) Export(ctx context.Context) (*ExportFile, error) {
	name, data, err := s.Store.Export(ctx)
	if err != nil {
		return nil, notifyFailure(ctx, s.Notifier, err)
	}
	if s.Notifier != nil {
		s.Notifier.Success(ctx, "Data exported successfully!")
	}
	return &ExportFile{Filename: name, Data: data}, nil
}

// ExportProgress 仅导出学习进度
func (s *DataService) ExportProgress(ctx context.Context) (*ExportFile, error) {
	name, data, err := s.Store.ExportProgress(ctx)
	if err != nil {
		return nil, notifyFailure(ctx, s.Notifier, err)
	}
	if s.Notifier != nil {
		s.Notifier.Success(ctx, "Progress data exported!")
	}
	return &ExportFile{Filename: name, Data: data}, nil
}

// Import 导入备份，格式错误时保留原有数据
func (s *DataService) Import(ctx context.Context, data []byte) error {
	err := s.Store.Import(ctx, data)
	switch {
	case err == nil:
		if s.Notifier != nil {
			s.Notifier.Success(ctx, "Data imported successfully!")
		}
		return nil
	case errors.Is(err, util.ErrInvalidImport):
		logger.Log.Warn("Rejected import", zap.Error(err))
		if s.Notifier != nil {
			s.Notifier.Error(ctx, "Invalid file format or corrupted data")
		}
		return err
	default:
		return notifyFailure(ctx, s.Notifier, err)
	}
}

// Clear 清空所有数据并恢复默认
func (s *DataService) Clear(ctx context.Context) error {
	if err := s.Store.Clear(ctx); err != nil {
		return notifyFailure(ctx, s.Notifier, err)
	}
	logger.Log.Info("All data cleared")
	if s.Notifier != nil {
		s.Notifier.Success(ctx, "All data cleared successfully!")
	}
	return nil
}

// CheckIntegrity 检查存储文档的完整性
func (s *DataService) CheckIntegrity(ctx context.Context) repository.IntegrityReport {
	report := s.Store.CheckIntegrity(ctx)
	if !report.Valid {
		logger.Log.Warn("Document integrity check failed",
			zap.Strings("missing", report.Missing),
			zap.String("error", report.Error))
	}
	return report
}
