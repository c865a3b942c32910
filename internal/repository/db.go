package repository

import (
	"fmt"

	"github.com/user/cinerag/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// NewSnapshotStore 按配置创建持久化适配器，返回的 close 用于释放资源
func NewSnapshotStore(cfg *config.Config) (SnapshotStore, func() error, error) {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		store := NewPostgresStore(db)
		if err := store.Migrate(); err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB.Close, nil
	case "file", "":
		return NewFileStore(cfg.DataFile), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
