package models

import (
	"time"

	"gorm.io/gorm"
)

// Importance levels for rules and events, ordered by severity.
const (
	ImportanceLow      = "low"
	ImportanceMedium   = "medium"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

// TriggerManual is the sentinel triggerScript value for rules that are
// never executed by the sweep (manual/custom rules).
const TriggerManual = "manual"

// DefaultDisplayDurationMinutes is used when an event's owning rule can no
// longer be found (deleted rule, orphaned event).
const DefaultDisplayDurationMinutes = 1440

// ImportanceRank maps an importance level to its numeric rank for sorting.
// Unknown levels rank below low.
func ImportanceRank(importance string) int {
	switch importance {
	case ImportanceCritical:
		return 4
	case ImportanceHigh:
		return 3
	case ImportanceMedium:
		return 2
	case ImportanceLow:
		return 1
	default:
		return 0
	}
}

// ValidImportance reports whether s is one of the known importance levels.
func ValidImportance(s string) bool {
	return ImportanceRank(s) > 0
}

// AlertRule defines what to check, how often, how important the result is,
// and how long resulting events stay on the live view.
type AlertRule struct {
	ID                     uint           `json:"id" gorm:"primaryKey"`
	Name                   string         `json:"name"`
	TriggerScript          string         `json:"trigger_script" gorm:"default:'manual'"`
	Parameters             string         `json:"parameters" gorm:"type:text;default:'{}'"`
	Importance             string         `json:"importance" gorm:"default:'medium'"`
	Category               string         `json:"category" gorm:"default:'General'"`
	PeriodSeconds          int            `json:"period_seconds" gorm:"default:60"`
	DisplayDurationMinutes int            `json:"display_duration_minutes" gorm:"default:1440"`
	ActionConfig           string         `json:"action_config" gorm:"type:text;default:'{}'"`
	Comment                string         `json:"comment"`
	IsActive               bool           `json:"is_active" gorm:"default:true"`
	LastOutput             string         `json:"last_output" gorm:"type:text"`
	WorkflowDeploymentID   string         `json:"workflow_deployment_id,omitempty"`
	WorkflowFlowName       string         `json:"workflow_flow_name,omitempty"`
	LastWorkflowState      string         `json:"last_workflow_state,omitempty"`
	LastSyncTimestamp      *time.Time     `json:"last_sync_timestamp,omitempty"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// AlertEvent is one recorded occurrence of a rule firing. Importance,
// category and ticker are denormalized at creation time and never change
// afterwards, even if the owning rule does.
type AlertEvent struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	RuleID                uint       `json:"rule_id" gorm:"index"`
	Timestamp             time.Time  `json:"timestamp" gorm:"index"`
	Message               string     `json:"message" gorm:"type:text"`
	Importance            string     `json:"importance"`
	Category              string     `json:"category"`
	Ticker                string     `json:"ticker"`
	IsAcknowledged        bool       `json:"is_acknowledged" gorm:"default:false"`
	AcknowledgedTimestamp *time.Time `json:"acknowledged_timestamp,omitempty"`
	Comment               string     `json:"comment"`
	WorkflowRunID         string     `json:"workflow_run_id,omitempty"`
	WorkflowState         string     `json:"workflow_state,omitempty"`
}

// DisplayTicker returns the event's ticker with the orphan fallback applied.
func (e *AlertEvent) DisplayTicker() string {
	if e.Ticker == "" {
		return "-"
	}
	return e.Ticker
}
