package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"silsilah_go/internal/model"
	"silsilah_go/internal/service"
)

// DB 数据库连接实例
type DB struct {
	*gorm.DB
}

func dialector(cfg service.DatabaseConfig) (gorm.Dialector, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

func logLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

// Open 连接数据库，失败时按配置重试，可选自动迁移
func Open(ctx context.Context, cfg service.DatabaseConfig, log *zap.Logger) (*DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, service.NewError(service.ErrConfig, "invalid database config", err)
	}

	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		},
	)

	var gormDB *gorm.DB
	err = service.NewRetry(cfg.Retry, log).Do(ctx, "connect database", func(ctx context.Context) error {
		db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			sqlDB.Close()
			return err
		}
		gormDB = db
		return nil
	})
	if err != nil {
		return nil, service.NewError(service.ErrDatabase, "failed to connect to database", err).
			WithContext("driver", cfg.Driver)
	}

	// 配置连接池
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, service.NewError(service.ErrDatabase, "failed to get database instance", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	db := &DB{gormDB}
	if cfg.AutoMigrate {
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
	}

	log.Info("database connected",
		zap.String("driver", cfg.Driver),
		zap.Bool("auto_migrate", cfg.AutoMigrate))
	return db, nil
}

// Migrate 自动迁移数据库表
func (db *DB) Migrate() error {
	err := db.AutoMigrate(
		&model.Bani{},
		&model.Person{},
		&model.Marriage{},
	)
	if err != nil {
		return service.NewError(service.ErrDatabase, "failed to migrate database", err)
	}
	return nil
}

// Ping 检查连接
func (db *DB) Ping(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close 关闭数据库连接
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
