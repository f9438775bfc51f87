package storage

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"plantcare-api/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyResolved means the reminder already reached a terminal
	// state; terminal transitions happen at most once per occurrence.
	ErrAlreadyResolved = errors.New("reminder already completed or skipped")
)

// Store is the persistence surface the services depend on.
type Store interface {
	CreateGarden(g *models.Garden) error
	GetGarden(id uint) (*models.Garden, error)
	CreatePlant(p *models.GardenPlant) error
	GetPlant(id uint) (*models.GardenPlant, error)
	GardenForPlant(plantID uint) (*models.Garden, error)
	DeletePlant(id uint) error

	CreateReminder(r *models.CareReminder) error
	GetReminder(id uint) (*models.CareReminder, error)
	PendingWateringForDay(day time.Time) ([]models.CareReminder, error)
	HasPendingOnDay(plantID uint, reminderType string, day time.Time) (bool, error)
	CompleteReminder(id uint, at time.Time) error
	SkipReminder(id uint, reason string) error
	DueUnnotified(now time.Time) ([]models.CareReminder, error)
	MarkNotified(id uint) error

	Close() error
}

// SQLiteStore implements Store on gorm over sqlite.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLite opens (or creates) the database at path and migrates the
// schema. Use "file::memory:?cache=shared" for tests.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, errors.Wrap(err, "failed to enable foreign keys")
	}

	if err := db.AutoMigrate(
		&models.Garden{},
		&models.GardenPlant{},
		&models.CareReminder{},
	); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) CreateGarden(g *models.Garden) error {
	return s.db.Create(g).Error
}

func (s *SQLiteStore) GetGarden(id uint) (*models.Garden, error) {
	var garden models.Garden
	if err := s.db.Preload("Plants").First(&garden, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &garden, nil
}

func (s *SQLiteStore) CreatePlant(p *models.GardenPlant) error {
	if err := s.db.First(&models.Garden{}, p.GardenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.db.Create(p).Error
}

func (s *SQLiteStore) GetPlant(id uint) (*models.GardenPlant, error) {
	var plant models.GardenPlant
	if err := s.db.First(&plant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &plant, nil
}

func (s *SQLiteStore) GardenForPlant(plantID uint) (*models.Garden, error) {
	plant, err := s.GetPlant(plantID)
	if err != nil {
		return nil, err
	}

	var garden models.Garden
	if err := s.db.First(&garden, plant.GardenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &garden, nil
}

// DeletePlant removes the plant and, via the FK cascade, its reminders.
func (s *SQLiteStore) DeletePlant(id uint) error {
	result := s.db.Delete(&models.GardenPlant{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateReminder(r *models.CareReminder) error {
	r.Normalize()
	return s.db.Create(r).Error
}

func (s *SQLiteStore) GetReminder(id uint) (*models.CareReminder, error) {
	var reminder models.CareReminder
	if err := s.db.First(&reminder, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &reminder, nil
}

func (s *SQLiteStore) PendingWateringForDay(day time.Time) ([]models.CareReminder, error) {
	start, end := dayBounds(day)

	var reminders []models.CareReminder
	err := s.db.
		Where("type = ?", models.ReminderWatering).
		Where("completed = ? AND skipped = ?", false, false).
		Where("scheduled_date >= ? AND scheduled_date < ?", start, end).
		Find(&reminders).Error
	return reminders, err
}

func (s *SQLiteStore) HasPendingOnDay(plantID uint, reminderType string, day time.Time) (bool, error) {
	start, end := dayBounds(day)

	var count int64
	err := s.db.Model(&models.CareReminder{}).
		Where("plant_id = ? AND type = ?", plantID, reminderType).
		Where("completed = ? AND skipped = ?", false, false).
		Where("scheduled_date >= ? AND scheduled_date < ?", start, end).
		Count(&count).Error
	return count > 0, err
}

// CompleteReminder marks the reminder completed in a single guarded
// update so concurrent sweeps cannot double-process it.
func (s *SQLiteStore) CompleteReminder(id uint, at time.Time) error {
	result := s.db.Model(&models.CareReminder{}).
		Where("id = ? AND completed = ? AND skipped = ?", id, false, false).
		Updates(map[string]any{
			"completed":    true,
			"completed_at": at,
		})
	return s.terminalResult(result, id)
}

// SkipReminder marks the reminder skipped, same guard as complete.
func (s *SQLiteStore) SkipReminder(id uint, reason string) error {
	result := s.db.Model(&models.CareReminder{}).
		Where("id = ? AND completed = ? AND skipped = ?", id, false, false).
		Updates(map[string]any{
			"skipped":     true,
			"skip_reason": reason,
		})
	return s.terminalResult(result, id)
}

func (s *SQLiteStore) terminalResult(result *gorm.DB, id uint) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.CareReminder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyResolved
}

func (s *SQLiteStore) DueUnnotified(now time.Time) ([]models.CareReminder, error) {
	var reminders []models.CareReminder
	err := s.db.
		Where("completed = ? AND skipped = ? AND notification_sent = ?", false, false, false).
		Where("scheduled_date <= ?", now).
		Order("scheduled_date").
		Find(&reminders).Error
	return reminders, err
}

func (s *SQLiteStore) MarkNotified(id uint) error {
	result := s.db.Model(&models.CareReminder{}).
		Where("id = ?", id).
		Update("notification_sent", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func dayBounds(day time.Time) (start, end time.Time) {
	y, m, d := day.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}
