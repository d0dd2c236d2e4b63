package services

import (
	"context"
	"fmt"
	"log"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/sentinel-labs/sentinel/workflow"
)

// SyncService reconciles external workflow run state onto events and
// their owning rules. The whole operation is idempotent and safe to retry
// on a fixed interval.
type SyncService struct {
	store  store.Store
	api    workflow.API
	clock  *Clock
	logger *log.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(st store.Store, api workflow.API, clock *Clock) *SyncService {
	return &SyncService{
		store:  st,
		api:    api,
		clock:  clock,
		logger: log.New(log.Writer(), "[WorkflowSync] ", log.LstdFlags),
	}
}

// Reconcile fetches the current state of every linked run in one batch,
// updates events whose cached state differs, and propagates the state of
// each rule's most recent linked event onto the rule's cache fields. It
// returns the number of events updated.
func (s *SyncService) Reconcile(ctx context.Context) (int, error) {
	events, err := s.store.ListEvents()
	if err != nil {
		return 0, fmt.Errorf("failed to list events: %w", err)
	}

	runIDs := make([]string, 0)
	for _, e := range events {
		if e.WorkflowRunID != "" {
			runIDs = append(runIDs, e.WorkflowRunID)
		}
	}
	if len(runIDs) == 0 {
		return 0, nil
	}

	states := s.api.GetBatchStates(ctx, runIDs)
	if len(states) == 0 {
		return 0, nil
	}

	updated := 0
	for i, e := range events {
		state, ok := states[e.WorkflowRunID]
		if !ok || state == e.WorkflowState {
			continue
		}
		if err := s.store.UpdateEvent(e.ID, func(ev *models.AlertEvent) {
			ev.WorkflowState = state
		}); err != nil {
			s.logger.Printf("Failed to update event %d: %v", e.ID, err)
			continue
		}
		events[i].WorkflowState = state
		updated++
	}

	s.propagateToRules(events)
	return updated, nil
}

// propagateToRules copies the state of each rule's most recently
// timestamped linked event onto the rule's display cache. Only events
// linked to the rule count; no aggregate is computed.
func (s *SyncService) propagateToRules(events []models.AlertEvent) {
	latest := make(map[uint]models.AlertEvent)
	for _, e := range events {
		if e.WorkflowRunID == "" {
			continue
		}
		current, ok := latest[e.RuleID]
		if !ok || e.Timestamp.After(current.Timestamp) {
			latest[e.RuleID] = e
		}
	}

	now := s.clock.Now()
	for ruleID, event := range latest {
		rule, err := s.store.GetRule(ruleID)
		if err != nil {
			// Orphaned event; nothing to propagate onto.
			continue
		}
		rule.LastWorkflowState = event.WorkflowState
		syncedAt := now
		rule.LastSyncTimestamp = &syncedAt
		if err := s.store.UpsertRule(rule); err != nil {
			s.logger.Printf("Failed to update rule %d sync cache: %v", ruleID, err)
		}
	}
}
