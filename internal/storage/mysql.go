package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"textrpg/server/internal/config"
	"textrpg/server/internal/models"
)

type MySQLStore struct {
	db *gorm.DB
}

func NewMySQLStore(cfg config.MySQLConfig) (*MySQLStore, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return newGormStore(db)
}

func newGormStore(db *gorm.DB) (*MySQLStore, error) {
	if err := db.AutoMigrate(&models.SaveRecord{}); err != nil {
		return nil, err
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts the record for slot; the id is kept from the first save
func (s *MySQLStore) Save(ctx context.Context, slot string, payload []byte) error {
	record := models.SaveRecord{
		ID:        uuid.NewString(),
		Slot:      slot,
		Payload:   string(payload),
		UpdatedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write save record: %w", err)
	}
	return nil
}

func (s *MySQLStore) Load(ctx context.Context, slot string) ([]byte, error) {
	var record models.SaveRecord
	err := s.db.WithContext(ctx).Where("slot = ?", slot).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read save record: %w", err)
	}
	return []byte(record.Payload), nil
}
