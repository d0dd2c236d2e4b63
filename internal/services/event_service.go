package services

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
)

// Stats summarizes the rule and event stores for the dashboard header.
type Stats struct {
	TotalRules           int `json:"total_rules"`
	ActiveRules          int `json:"active_rules"`
	TotalEvents          int `json:"total_events"`
	UnacknowledgedEvents int `json:"unacknowledged_events"`
}

// EventService handles event-level operations: acknowledgement, stats,
// and mock alert generation.
type EventService struct {
	store store.Store
	clock *Clock
}

// NewEventService creates a new event service
func NewEventService(st store.Store, clock *Clock) *EventService {
	return &EventService{store: st, clock: clock}
}

// ListEvents returns all events.
func (s *EventService) ListEvents() ([]models.AlertEvent, error) {
	return s.store.ListEvents()
}

// Acknowledge marks the event acknowledged with an optional comment.
// The transition is one-way; acknowledging an already-acknowledged event
// is a no-op and leaves the original timestamp and comment in place.
func (s *EventService) Acknowledge(id uint, comment string) (*models.AlertEvent, error) {
	now := s.clock.Now()
	err := s.store.UpdateEvent(id, func(e *models.AlertEvent) {
		if e.IsAcknowledged {
			return
		}
		e.IsAcknowledged = true
		ackedAt := now
		e.AcknowledgedTimestamp = &ackedAt
		e.Comment = comment
	})
	if err != nil {
		return nil, err
	}
	return s.store.GetEvent(id)
}

// Stats computes the dashboard counters from the full stores.
func (s *EventService) Stats() (*Stats, error) {
	rules, err := s.store.ListRules()
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEvents()
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalRules: len(rules), TotalEvents: len(events)}
	for _, r := range rules {
		if r.IsActive {
			stats.ActiveRules++
		}
	}
	for _, e := range events {
		if !e.IsAcknowledged {
			stats.UnacknowledgedEvents++
		}
	}
	return stats, nil
}

// GenerateMockAlerts rolls a die per active rule and fabricates an event
// from the rule's own parameters for roughly 40% of them. Rules with
// unparseable parameters are logged and skipped.
func (s *EventService) GenerateMockAlerts() (int, error) {
	rules, err := s.store.ListRules()
	if err != nil {
		return 0, err
	}

	generated := 0
	now := s.clock.Now()
	for _, rule := range rules {
		if !rule.IsActive || rand.Float64() >= 0.4 {
			continue
		}

		var params map[string]interface{}
		if err := json.Unmarshal([]byte(rule.Parameters), &params); err != nil {
			log.Printf("Error decoding JSON parameters for rule %d: %v", rule.ID, err)
			continue
		}

		ticker, _ := params["ticker"].(string)
		if ticker == "" {
			ticker = "UNKNOWN"
		}
		metric, _ := params["metric"].(string)
		if metric == "" {
			metric = "unknown_metric"
		}
		threshold := 0.0
		if v, ok := params["threshold"].(float64); ok {
			threshold = v
		}
		currentValue := threshold + float64(1+rand.Intn(20))

		event := &models.AlertEvent{
			RuleID:     rule.ID,
			Timestamp:  now,
			Message:    fmt.Sprintf("Alert triggered for %s: %s is %v (Threshold: %v)", ticker, metric, currentValue, threshold),
			Importance: rule.Importance,
			Category:   rule.Category,
			Ticker:     ticker,
		}
		if err := s.store.AppendEvent(event); err != nil {
			return generated, fmt.Errorf("failed to save mock event: %w", err)
		}
		generated++
	}
	return generated, nil
}
