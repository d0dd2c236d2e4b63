package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/sentinel-labs/sentinel/trigger"
)

// SweepService runs the triggers of all active, non-manual rules and
// materializes events from positive results. Trigger executions fan out
// concurrently since each only reads its own rule's parameters; merging
// results back into the stores is serialized on the collecting goroutine.
type SweepService struct {
	store    store.Store
	clock    *Clock
	notifier *NotifyService
	logger   *log.Logger
}

// NewSweepService creates a new sweep service. notifier may be nil to
// disable dispatch.
func NewSweepService(st store.Store, clock *Clock, notifier *NotifyService) *SweepService {
	return &SweepService{
		store:    st,
		clock:    clock,
		notifier: notifier,
		logger:   log.New(log.Writer(), "[Sweep] ", log.LstdFlags),
	}
}

type sweepResult struct {
	rule   models.AlertRule
	output *trigger.Output
}

// Sweep executes one full pass over the active rules and returns how many
// events were created. A failing trigger is logged and skipped; the rest
// of the sweep proceeds.
func (s *SweepService) Sweep(ctx context.Context) (int, error) {
	rules, err := s.store.ListRules()
	if err != nil {
		return 0, fmt.Errorf("failed to list rules: %w", err)
	}

	results := make(chan sweepResult)
	var wg sync.WaitGroup
	for _, rule := range rules {
		if !rule.IsActive || rule.TriggerScript == models.TriggerManual {
			continue
		}

		params, err := decodeParams(rule.Parameters)
		if err != nil {
			s.logger.Printf("Skipping rule %d (%s): %v", rule.ID, rule.Name, err)
			continue
		}

		wg.Add(1)
		go func(rule models.AlertRule, params trigger.Params) {
			defer wg.Done()
			results <- sweepResult{rule: rule, output: trigger.Run(ctx, rule.TriggerScript, params)}
		}(rule, params)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	created := 0
	for res := range results {
		if res.output == nil {
			continue
		}
		if err := s.recordOutput(res.rule, res.output); err != nil {
			s.logger.Printf("Error recording output for rule %d: %v", res.rule.ID, err)
			continue
		}
		if res.output.Triggered {
			created++
		}
	}
	return created, nil
}

// recordOutput caches the raw output on the rule and, for a triggered
// result, appends a new event denormalizing importance, category and
// ticker from the output.
func (s *SweepService) recordOutput(rule models.AlertRule, out *trigger.Output) error {
	if raw, err := json.Marshal(out); err == nil {
		rule.LastOutput = string(raw)
		if err := s.store.UpsertRule(&rule); err != nil {
			return fmt.Errorf("failed to cache trigger output: %w", err)
		}
	}

	if !out.Triggered {
		return nil
	}

	importance := out.Importance
	if importance == "" {
		importance = rule.Importance
	}
	timestamp := out.Timestamp
	if timestamp.IsZero() {
		timestamp = s.clock.Now()
	}

	event := &models.AlertEvent{
		RuleID:     rule.ID,
		Timestamp:  timestamp,
		Message:    out.Message,
		Importance: importance,
		Category:   rule.Category,
		Ticker:     out.Ticker,
	}
	if runID, ok := out.Metadata["flow_run_id"].(string); ok && runID != "" {
		event.WorkflowRunID = runID
		if state, ok := out.Metadata["initial_state"].(string); ok {
			event.WorkflowState = state
		}
	}

	if err := s.store.AppendEvent(event); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	if s.notifier != nil {
		go func(rule models.AlertRule, event models.AlertEvent) {
			if err := s.notifier.Dispatch(rule, event); err != nil {
				s.logger.Printf("Failed to dispatch notifications for rule %d: %v", rule.ID, err)
			}
		}(rule, *event)
	}
	return nil
}

func decodeParams(raw string) (trigger.Params, error) {
	if raw == "" {
		return trigger.Params{}, nil
	}
	var params trigger.Params
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid rule parameters: %w", err)
	}
	return params, nil
}
