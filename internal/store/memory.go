package store

import (
	"errors"
	"sync"

	"github.com/sentinel-labs/sentinel/internal/models"
)

// ErrNotFound is returned when a rule or event id does not exist.
var ErrNotFound = errors.New("record not found")

// MemoryStore is a mutex-guarded in-memory Store. All writes serialize on
// one lock, satisfying the single-writer discipline; ids are assigned from
// counters that only increase.
type MemoryStore struct {
	mu          sync.RWMutex
	rules       []models.AlertRule
	events      []models.AlertEvent
	nextRuleID  uint
	nextEventID uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextRuleID: 1, nextEventID: 1}
}

// ListRules returns a copy of all rules.
func (s *MemoryStore) ListRules() ([]models.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertRule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

// GetRule returns the rule with the given id.
func (s *MemoryStore) GetRule(id uint) (*models.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.rules {
		if s.rules[i].ID == id {
			rule := s.rules[i]
			return &rule, nil
		}
	}
	return nil, ErrNotFound
}

// UpsertRule inserts the rule, assigning the next id when it has none, or
// replaces the stored rule with the same id.
func (s *MemoryStore) UpsertRule(rule *models.AlertRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.ID == 0 {
		rule.ID = s.nextRuleID
		s.nextRuleID++
		s.rules = append(s.rules, *rule)
		return nil
	}
	if rule.ID >= s.nextRuleID {
		s.nextRuleID = rule.ID + 1
	}
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = *rule
			return nil
		}
	}
	s.rules = append(s.rules, *rule)
	return nil
}

// RemoveRule deletes the rule. Events referencing it are left in place.
func (s *MemoryStore) RemoveRule(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ListEvents returns a copy of all events.
func (s *MemoryStore) ListEvents() ([]models.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AlertEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// GetEvent returns the event with the given id.
func (s *MemoryStore) GetEvent(id uint) (*models.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.events {
		if s.events[i].ID == id {
			event := s.events[i]
			return &event, nil
		}
	}
	return nil, ErrNotFound
}

// AppendEvent adds the event, assigning the next id when it has none.
func (s *MemoryStore) AppendEvent(event *models.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == 0 {
		event.ID = s.nextEventID
	}
	if event.ID >= s.nextEventID {
		s.nextEventID = event.ID + 1
	}
	s.events = append(s.events, *event)
	return nil
}

// UpdateEvent applies mutate to the stored event under the write lock.
func (s *MemoryStore) UpdateEvent(id uint, mutate func(*models.AlertEvent)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].ID == id {
			mutate(&s.events[i])
			return nil
		}
	}
	return ErrNotFound
}
