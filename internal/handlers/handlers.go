package handlers

import (
	"github.com/sentinel-labs/sentinel/internal/config"
	"github.com/sentinel-labs/sentinel/internal/services"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/sentinel-labs/sentinel/workflow"
)

// Global handler instance
var globalHandler *SentinelHandler

// SentinelHandler exposes the dashboard's commands and read-only
// projections over HTTP.
type SentinelHandler struct {
	ruleService  *services.RuleService
	eventService *services.EventService
	liveView     *services.LiveViewService
	history      *services.HistoryService
	sweepService *services.SweepService
	syncService  *services.SyncService
	workflowAPI  workflow.API
	clock        *services.Clock
}

// NewSentinelHandler wires the full service stack on top of a store.
func NewSentinelHandler(st store.Store, cfg *config.Config, api workflow.API) *SentinelHandler {
	clock := services.NewClock()
	notifier := services.NewNotifyService(cfg.Notifications)

	h := &SentinelHandler{
		ruleService:  services.NewRuleService(st),
		eventService: services.NewEventService(st, clock),
		liveView:     services.NewLiveViewService(st, clock),
		history:      services.NewHistoryService(st),
		sweepService: services.NewSweepService(st, clock, notifier),
		workflowAPI:  api,
		clock:        clock,
	}
	if api != nil {
		h.syncService = services.NewSyncService(st, api, clock)
	}
	return h
}

// SetGlobalHandler sets the global handler instance
func SetGlobalHandler(handler *SentinelHandler) {
	globalHandler = handler
}

// GetGlobalHandler returns the global handler instance
func GetGlobalHandler() *SentinelHandler {
	return globalHandler
}

// Clock exposes the dashboard clock, mainly for the scheduler wiring.
func (h *SentinelHandler) Clock() *services.Clock {
	return h.clock
}

// SweepService exposes the sweep service for the scheduler wiring.
func (h *SentinelHandler) SweepService() *services.SweepService {
	return h.sweepService
}

// SyncService exposes the sync service for the scheduler wiring; nil when
// the workflow integration is disabled.
func (h *SentinelHandler) SyncService() *services.SyncService {
	return h.syncService
}
