package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
)

type entry struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     string `gorm:"column:value"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "storage_entries" }

// SQLiteStore persists key-value pairs in a local sqlite file.
type SQLiteStore struct {
	conn *gorm.DB
}

// NewSQLite opens (and auto-migrates) the local store at cfg.Path.
func NewSQLite(cfg config.StorageConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	conn, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	if err := conn.AutoMigrate(&entry{}); err != nil {
		return nil, fmt.Errorf("migrating local store: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Get(key string) (string, bool, error) {
	var row entry
	err := s.conn.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read local store")
	}
	return row.Value, true, nil
}

func (s *SQLiteStore) Set(key, value string) error {
	row := entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	if err := s.conn.Save(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write local store")
	}
	return nil
}

func (s *SQLiteStore) Remove(key string) error {
	if err := s.conn.Delete(&entry{}, "key = ?", key).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove local store key")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
