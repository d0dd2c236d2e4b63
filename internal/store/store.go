package store

import "github.com/sentinel-labs/sentinel/internal/models"

// RuleStore is the persistence surface for alert rules. Backing
// technology is a swappable collaborator; the core only sees this.
type RuleStore interface {
	ListRules() ([]models.AlertRule, error)
	GetRule(id uint) (*models.AlertRule, error)
	UpsertRule(rule *models.AlertRule) error
	RemoveRule(id uint) error
}

// EventStore is the persistence surface for alert events. Events are
// append-only except for the mutations applied through UpdateEvent
// (acknowledgement and workflow state reconciliation).
type EventStore interface {
	ListEvents() ([]models.AlertEvent, error)
	GetEvent(id uint) (*models.AlertEvent, error)
	AppendEvent(event *models.AlertEvent) error
	UpdateEvent(id uint, mutate func(*models.AlertEvent)) error
}

// Store combines both repositories; the concrete implementations back
// them with the same storage.
type Store interface {
	RuleStore
	EventStore
}
