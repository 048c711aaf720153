package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRecord MySQL 中的文档行
type DocumentRecord struct {
	Key       string    `gorm:"column:doc_key;primaryKey;size:191"`
	Value     []byte    `gorm:"type:longblob;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (DocumentRecord) TableName() string { return "learnhub_documents" }

type MySQL struct {
	db *gorm.DB
}

// NewMySQL 自动迁移文档表
func NewMySQL(db *gorm.DB) (*MySQL, error) {
	if err := db.AutoMigrate(&DocumentRecord{}); err != nil {
		return nil, err
	}
	return &MySQL{db: db}, nil
}

func (m *MySQL) Name() string { return "mysql" }

func (m *MySQL) Get(ctx context.Context, key string) ([]byte, error) {
	var rec DocumentRecord
	err := m.db.WithContext(ctx).Where("doc_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.Value, nil
}

func (m *MySQL) Set(ctx context.Context, key string, value []byte) error {
	rec := DocumentRecord{Key: key, Value: value, UpdatedAt: time.Now()}
	return m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "doc_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (m *MySQL) Remove(ctx context.Context, key string) error {
	return m.db.WithContext(ctx).Where("doc_key = ?", key).Delete(&DocumentRecord{}).Error
}

func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
