package storage

import (
	"context"
	"fmt"
	"learnhub_backend/internal/config"
	"learnhub_backend/pkg/database"
)

// Open 按配置创建存储介质，并套上配额与指标装饰
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Storage.Type {
	case config.StorageMemory:
		b = NewMemory(cfg.Storage.QuotaBytes)
	case config.StorageRedis:
		rdb, rerr := database.InitRedis(ctx, &cfg.Redis)
		if rerr != nil {
			return nil, fmt.Errorf("init redis: %w", rerr)
		}
		b = NewRedis(rdb, "")
	case config.StorageMinio:
		b, err = NewMinio(ctx, &cfg.Storage)
	case config.StorageOSS:
		b, err = NewOSS(&cfg.Storage)
	case config.StorageSQLite:
		b, err = OpenSQLite(cfg.Storage.SQLitePath)
	case config.StorageMySQL:
		db, derr := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if derr != nil {
			return nil, fmt.Errorf("init database: %w", derr)
		}
		b, err = NewMySQL(db)
	case config.StorageMongo:
		client, coll, merr := database.InitMongo(ctx, &cfg.Mongo)
		if merr != nil {
			return nil, fmt.Errorf("init mongo: %w", merr)
		}
		b = NewMongo(client, coll)
	case config.StorageLocal, "":
		b, err = NewFile(cfg.Storage.LocalPath)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Type, err)
	}

	// 内存介质自己统计总量
	if cfg.Storage.Type != config.StorageMemory {
		b = WithQuota(b, cfg.Storage.QuotaBytes)
	}
	return Instrument(b), nil
}
