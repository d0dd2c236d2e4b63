package store

import (
	"errors"

	"github.com/sentinel-labs/sentinel/internal/models"
	"gorm.io/gorm"
)

// GormStore backs the rule and event repositories with a gorm database.
// Write serialization is delegated to the database connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store on top of an initialized gorm database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ListRules returns all rules.
func (s *GormStore) ListRules() ([]models.AlertRule, error) {
	var rules []models.AlertRule
	if err := s.db.Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// GetRule returns the rule with the given id.
func (s *GormStore) GetRule(id uint) (*models.AlertRule, error) {
	var rule models.AlertRule
	if err := s.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// UpsertRule creates or updates the rule.
func (s *GormStore) UpsertRule(rule *models.AlertRule) error {
	return s.db.Save(rule).Error
}

// RemoveRule deletes the rule. No cascade: its events remain.
func (s *GormStore) RemoveRule(id uint) error {
	result := s.db.Delete(&models.AlertRule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEvents returns all events.
func (s *GormStore) ListEvents() ([]models.AlertEvent, error) {
	var events []models.AlertEvent
	if err := s.db.Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// GetEvent returns the event with the given id.
func (s *GormStore) GetEvent(id uint) (*models.AlertEvent, error) {
	var event models.AlertEvent
	if err := s.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

// AppendEvent inserts the event.
func (s *GormStore) AppendEvent(event *models.AlertEvent) error {
	return s.db.Create(event).Error
}

// UpdateEvent loads the event, applies mutate, and saves it back inside a
// transaction so concurrent writers serialize.
func (s *GormStore) UpdateEvent(id uint, mutate func(*models.AlertEvent)) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var event models.AlertEvent
		if err := tx.First(&event, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		mutate(&event)
		return tx.Save(&event).Error
	})
}
