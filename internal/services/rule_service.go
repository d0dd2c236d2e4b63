package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
)

// Validation errors surfaced directly to the caller. The store is left
// unchanged when any of these fire.
var (
	ErrEmptyRuleName     = errors.New("rule name must not be empty")
	ErrInvalidParameters = errors.New("parameters must be valid JSON")
	ErrInvalidActions    = errors.New("action config must be valid JSON")
	ErrInvalidImportance = errors.New("unknown importance level")
)

// RuleDraft is the editable form state for creating a rule. Clone fills
// one of these from an existing rule.
type RuleDraft struct {
	Name                 string `json:"name"`
	TriggerScript        string `json:"trigger_script"`
	Parameters           string `json:"parameters"`
	Importance           string `json:"importance"`
	Category             string `json:"category"`
	PeriodValue          int    `json:"period_value"`
	PeriodUnit           string `json:"period_unit"`
	DurationValue        int    `json:"duration_value"`
	DurationUnit         string `json:"duration_unit"`
	ActionConfig         string `json:"action_config"`
	Comment              string `json:"comment"`
	WorkflowDeploymentID string `json:"workflow_deployment_id,omitempty"`
	WorkflowFlowName     string `json:"workflow_flow_name,omitempty"`
}

// RuleService owns the rule lifecycle commands: create, clone, toggle,
// delete.
type RuleService struct {
	rules store.RuleStore
}

// NewRuleService creates a new rule service
func NewRuleService(rules store.RuleStore) *RuleService {
	return &RuleService{rules: rules}
}

// ListRules returns all rules.
func (s *RuleService) ListRules() ([]models.AlertRule, error) {
	return s.rules.ListRules()
}

// GetRule returns a single rule by id.
func (s *RuleService) GetRule(id uint) (*models.AlertRule, error) {
	return s.rules.GetRule(id)
}

// CreateRule validates the draft, converts the period and duration unit
// pairs, and appends a new active rule to the store.
func (s *RuleService) CreateRule(draft RuleDraft) (*models.AlertRule, error) {
	if strings.TrimSpace(draft.Name) == "" {
		return nil, ErrEmptyRuleName
	}

	parameters := draft.Parameters
	if parameters == "" {
		parameters = "{}"
	}
	if !json.Valid([]byte(parameters)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidParameters, parameters)
	}

	actionConfig := draft.ActionConfig
	if actionConfig == "" {
		actionConfig = "{}"
	}
	if !json.Valid([]byte(actionConfig)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidActions, actionConfig)
	}

	importance := draft.Importance
	if importance == "" {
		importance = models.ImportanceMedium
	}
	if !models.ValidImportance(importance) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidImportance, importance)
	}

	periodSeconds, err := PeriodToSeconds(draft.PeriodValue, draft.PeriodUnit)
	if err != nil {
		return nil, err
	}
	durationMinutes, err := DurationToMinutes(draft.DurationValue, draft.DurationUnit)
	if err != nil {
		return nil, err
	}

	category := draft.Category
	if category == "" {
		category = "General"
	}
	script := draft.TriggerScript
	if script == "" {
		script = models.TriggerManual
	}

	rule := &models.AlertRule{
		Name:                   strings.TrimSpace(draft.Name),
		TriggerScript:          script,
		Parameters:             parameters,
		Importance:             importance,
		Category:               category,
		PeriodSeconds:          periodSeconds,
		DisplayDurationMinutes: durationMinutes,
		ActionConfig:           actionConfig,
		Comment:                draft.Comment,
		IsActive:               true,
		WorkflowDeploymentID:   draft.WorkflowDeploymentID,
		WorkflowFlowName:       draft.WorkflowFlowName,
	}
	if err := s.rules.UpsertRule(rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}
	return rule, nil
}

// CloneRule copies the editable fields of an existing rule into a fresh
// draft, reverse-deriving the (value, unit) pairs from the stored
// seconds/minutes. The source rule is not modified.
func (s *RuleService) CloneRule(id uint) (*RuleDraft, error) {
	source, err := s.rules.GetRule(id)
	if err != nil {
		return nil, err
	}

	periodValue, periodUnit := PeriodFromSeconds(source.PeriodSeconds)
	durationValue, durationUnit := DurationFromMinutes(source.DisplayDurationMinutes)

	return &RuleDraft{
		Name:                 "Copy of " + source.Name,
		TriggerScript:        source.TriggerScript,
		Parameters:           source.Parameters,
		Importance:           source.Importance,
		Category:             source.Category,
		PeriodValue:          periodValue,
		PeriodUnit:           periodUnit,
		DurationValue:        durationValue,
		DurationUnit:         durationUnit,
		ActionConfig:         source.ActionConfig,
		Comment:              source.Comment,
		WorkflowDeploymentID: source.WorkflowDeploymentID,
		WorkflowFlowName:     source.WorkflowFlowName,
	}, nil
}

// ToggleRule flips the rule's active flag. Existing events are untouched.
func (s *RuleService) ToggleRule(id uint) (*models.AlertRule, error) {
	rule, err := s.rules.GetRule(id)
	if err != nil {
		return nil, err
	}
	rule.IsActive = !rule.IsActive
	if err := s.rules.UpsertRule(rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}
	return rule, nil
}

// DeleteRule removes the rule. Its events remain and are treated as
// orphaned at read time.
func (s *RuleService) DeleteRule(id uint) error {
	return s.rules.RemoveRule(id)
}
