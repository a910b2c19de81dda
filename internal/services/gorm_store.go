package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"klarna_checkout_echo/internal/models"
)

// GormStore is the postgres-backed RecordStore. Every mutation is persisted
// synchronously, trading the file store's autosave loss window for a round
// trip per write.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore connects to postgres with connection pooling and runs the
// mirror-table migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.SessionRecord{}, &models.OrderRecord{}); err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return &GormStore{db: db}, nil
}

func (s *GormStore) InsertSession(rec *models.SessionRecord) error {
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	return s.db.Create(rec).Error
}

func (s *GormStore) InsertOrder(rec *models.OrderRecord) error {
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}
	return s.db.Create(rec).Error
}

func (s *GormStore) ListSessions() ([]models.SessionRecord, error) {
	var recs []models.SessionRecord
	err := s.db.Order("created_at asc").Find(&recs).Error
	return recs, err
}

func (s *GormStore) ListOrders() ([]models.OrderRecord, error) {
	var recs []models.OrderRecord
	err := s.db.Order("created_at asc").Find(&recs).Error
	return recs, err
}

func (s *GormStore) GetSession(sessionID string) (*models.SessionRecord, error) {
	var rec models.SessionRecord
	err := s.db.Where("session_id = ?", sessionID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormStore) GetOrder(orderID string) (*models.OrderRecord, error) {
	var rec models.OrderRecord
	err := s.db.Where("order_id = ?", orderID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateSession reads the current row, applies the update, and saves the full
// snapshot back inside one transaction so the payment/status invariant cannot
// be split across writers.
func (s *GormStore) UpdateSession(sessionID string, update models.SessionUpdate) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.SessionRecord
		err := tx.Where("session_id = ?", sessionID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		update.Apply(&rec)
		return tx.Save(&rec).Error
	})
}

func (s *GormStore) UpdateOrder(orderID string, update models.OrderUpdate) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.OrderRecord
		err := tx.Where("order_id = ?", orderID).First(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		if err != nil {
			return err
		}
		update.Apply(&rec)
		return tx.Save(&rec).Error
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
