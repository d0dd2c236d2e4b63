package services

import (
	"sort"
	"strings"
	"time"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
)

// HistoryFilters parameterize the audit search over the full event set.
// Empty or "All" values bypass a filter. Dates are interpreted as whole
// days: [start 00:00, end+1day 00:00).
type HistoryFilters struct {
	Importance    string
	SearchText    string
	ExternalState string
	StartDate     *time.Time
	EndDate       *time.Time
}

// HistoryRow is the flat projection the history blotter renders.
type HistoryRow struct {
	ID                    uint       `json:"id"`
	RuleID                uint       `json:"rule_id"`
	Timestamp             time.Time  `json:"timestamp"`
	Ticker                string     `json:"ticker"`
	Category              string     `json:"category"`
	Message               string     `json:"message"`
	Importance            string     `json:"importance"`
	IsAcknowledged        bool       `json:"is_acknowledged"`
	AcknowledgedTimestamp *time.Time `json:"acknowledged_timestamp,omitempty"`
	AckComment            string     `json:"ack_comment,omitempty"`
	WorkflowRunID         string     `json:"workflow_run_id,omitempty"`
	WorkflowState         string     `json:"workflow_state,omitempty"`
}

// HistoryPage is one page of history rows plus the filtered total.
type HistoryPage struct {
	Rows       []HistoryRow `json:"rows"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
}

// GetHistoryPage filters the full event set, orders it chronologically
// (newest first, unlike the live view's importance ordering), and returns
// the requested 1-indexed page. Pages past the end come back empty; the
// navigation commands are responsible for clamping.
func GetHistoryPage(events []models.AlertEvent, f HistoryFilters, page, pageSize int) HistoryPage {
	filtered := make([]models.AlertEvent, 0, len(events))
	for _, e := range events {
		if matchesHistoryFilters(e, f) {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].Timestamp.Equal(filtered[j].Timestamp) {
			return filtered[i].Timestamp.After(filtered[j].Timestamp)
		}
		return filtered[i].ID > filtered[j].ID
	})

	if pageSize < 1 {
		pageSize = 10
	}
	if page < 1 {
		page = 1
	}
	totalPages := TotalPages(len(filtered), pageSize)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	rows := make([]HistoryRow, 0, end-start)
	for _, e := range filtered[start:end] {
		rows = append(rows, historyRow(e))
	}
	return HistoryPage{Rows: rows, TotalCount: len(filtered), Page: page, TotalPages: totalPages}
}

func matchesHistoryFilters(e models.AlertEvent, f HistoryFilters) bool {
	if f.Importance != "" && f.Importance != "All" && !strings.EqualFold(e.Importance, f.Importance) {
		return false
	}
	if f.SearchText != "" && !strings.Contains(strings.ToLower(e.Message), strings.ToLower(f.SearchText)) {
		return false
	}
	switch f.ExternalState {
	case "", "All":
	case "None":
		if e.WorkflowRunID != "" {
			return false
		}
	default:
		if e.WorkflowState != f.ExternalState {
			return false
		}
	}
	if f.StartDate != nil {
		start := startOfDay(*f.StartDate)
		if e.Timestamp.Before(start) {
			return false
		}
	}
	if f.EndDate != nil {
		end := startOfDay(*f.EndDate).AddDate(0, 0, 1)
		if !e.Timestamp.Before(end) {
			return false
		}
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func historyRow(e models.AlertEvent) HistoryRow {
	return HistoryRow{
		ID:                    e.ID,
		RuleID:                e.RuleID,
		Timestamp:             e.Timestamp,
		Ticker:                e.DisplayTicker(),
		Category:              e.Category,
		Message:               e.Message,
		Importance:            e.Importance,
		IsAcknowledged:        e.IsAcknowledged,
		AcknowledgedTimestamp: e.AcknowledgedTimestamp,
		AckComment:            e.Comment,
		WorkflowRunID:         e.WorkflowRunID,
		WorkflowState:         e.WorkflowState,
	}
}

// HistoryService serves audit pages straight from the event store.
type HistoryService struct {
	events store.EventStore
}

// NewHistoryService creates a new history service
func NewHistoryService(events store.EventStore) *HistoryService {
	return &HistoryService{events: events}
}

// GetPage runs the history query against the full event set.
func (s *HistoryService) GetPage(f HistoryFilters, page, pageSize int) (*HistoryPage, error) {
	events, err := s.events.ListEvents()
	if err != nil {
		return nil, err
	}
	result := GetHistoryPage(events, f, page, pageSize)
	return &result, nil
}
