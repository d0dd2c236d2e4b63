package services

import (
	"sort"
	"strings"
	"time"

	"github.com/sentinel-labs/sentinel/internal/models"
	"github.com/sentinel-labs/sentinel/internal/store"
)

// Sortable live view columns.
const (
	SortByTimestamp  = "timestamp"
	SortByImportance = "importance"
	SortByMessage    = "message"
	SortByStatus     = "status"
)

// LiveFilters are the quick filters applied to live candidates before
// pagination. Empty or "All" values bypass a filter; "None" on the
// workflow state matches events with no run linkage.
type LiveFilters struct {
	Importance    string
	Category      string
	WorkflowState string
}

// LiveQuery parameterizes one live view read.
type LiveQuery struct {
	SortColumn string // empty selects the default importance/recency order
	SortDesc   bool
	Page       int
	PageSize   int
	Filters    LiveFilters
}

// LiveRow is the flat projection the live blotter renders.
type LiveRow struct {
	ID             uint      `json:"id"`
	RuleID         uint      `json:"rule_id"`
	Timestamp      time.Time `json:"timestamp"`
	Importance     string    `json:"importance"`
	Category       string    `json:"category"`
	Ticker         string    `json:"ticker"`
	Message        string    `json:"message"`
	IsAcknowledged bool      `json:"is_acknowledged"`
	WorkflowRunID  string    `json:"workflow_run_id,omitempty"`
	WorkflowState  string    `json:"workflow_state,omitempty"`
}

// LivePage is one page of the live view plus its pagination envelope.
type LivePage struct {
	Rows       []LiveRow `json:"rows"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
}

// LiveCandidate reports whether the event belongs on the live view at the
// given time: critical/high events stay until acknowledged; medium/low
// events stay while inside the owning rule's display window. The window
// boundary is exclusive: an event aged exactly displayDurationMinutes is
// out.
func LiveCandidate(event models.AlertEvent, rules map[uint]models.AlertRule, now time.Time) bool {
	if models.ImportanceRank(event.Importance) >= models.ImportanceRank(models.ImportanceHigh) {
		return !event.IsAcknowledged
	}

	durationMinutes := models.DefaultDisplayDurationMinutes
	if rule, ok := rules[event.RuleID]; ok {
		durationMinutes = rule.DisplayDurationMinutes
	}
	return now.Sub(event.Timestamp) < time.Duration(durationMinutes)*time.Minute
}

// BuildLiveView evaluates the retention policy from scratch over the full
// event set, applies the quick filters, sorts, and paginates. It is a pure
// function of its inputs; nothing is cached between reads.
func BuildLiveView(events []models.AlertEvent, rules map[uint]models.AlertRule, now time.Time, q LiveQuery) LivePage {
	candidates := make([]models.AlertEvent, 0, len(events))
	for _, e := range events {
		if !LiveCandidate(e, rules, now) {
			continue
		}
		if !matchesLiveFilters(e, q.Filters) {
			continue
		}
		candidates = append(candidates, e)
	}

	sortLive(candidates, q.SortColumn, q.SortDesc)

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = 10
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	totalPages := TotalPages(len(candidates), pageSize)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(candidates) {
		start = len(candidates)
	}
	if end > len(candidates) {
		end = len(candidates)
	}

	rows := make([]LiveRow, 0, end-start)
	for _, e := range candidates[start:end] {
		rows = append(rows, liveRow(e))
	}
	return LivePage{Rows: rows, TotalCount: len(candidates), Page: page, TotalPages: totalPages}
}

// TotalPages is ceil(count/pageSize) with a floor of one page even for an
// empty result.
func TotalPages(count, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (count + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

func matchesLiveFilters(e models.AlertEvent, f LiveFilters) bool {
	if f.Importance != "" && f.Importance != "All" && !strings.EqualFold(e.Importance, f.Importance) {
		return false
	}
	if f.Category != "" && f.Category != "All" && !strings.EqualFold(e.Category, f.Category) {
		return false
	}
	switch f.WorkflowState {
	case "", "All":
	case "None":
		if e.WorkflowRunID != "" {
			return false
		}
	default:
		if e.WorkflowState != f.WorkflowState {
			return false
		}
	}
	return true
}

// sortLive orders candidates by the selected column, or by the default
// importance-rank-descending order with recency tie-breaks. The importance
// column always compares ranks, never lexical values.
func sortLive(events []models.AlertEvent, column string, desc bool) {
	if column == "" {
		sort.SliceStable(events, func(i, j int) bool {
			ri, rj := models.ImportanceRank(events[i].Importance), models.ImportanceRank(events[j].Importance)
			if ri != rj {
				return ri > rj
			}
			return events[i].Timestamp.After(events[j].Timestamp)
		})
		return
	}

	compare := func(i, j int) int {
		switch column {
		case SortByImportance:
			return models.ImportanceRank(events[i].Importance) - models.ImportanceRank(events[j].Importance)
		case SortByMessage:
			return strings.Compare(strings.ToLower(events[i].Message), strings.ToLower(events[j].Message))
		case SortByStatus:
			if events[i].IsAcknowledged == events[j].IsAcknowledged {
				return 0
			}
			if events[i].IsAcknowledged {
				return 1
			}
			return -1
		default: // SortByTimestamp
			return events[i].Timestamp.Compare(events[j].Timestamp)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		c := compare(i, j)
		if c == 0 {
			// Recency settles ties regardless of direction.
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func liveRow(e models.AlertEvent) LiveRow {
	return LiveRow{
		ID:             e.ID,
		RuleID:         e.RuleID,
		Timestamp:      e.Timestamp,
		Importance:     e.Importance,
		Category:       e.Category,
		Ticker:         e.DisplayTicker(),
		Message:        e.Message,
		IsAcknowledged: e.IsAcknowledged,
		WorkflowRunID:  e.WorkflowRunID,
		WorkflowState:  e.WorkflowState,
	}
}

// LiveViewService reads the stores, evaluates the policy at the clock's
// last ticked time, and serves pages to the handlers.
type LiveViewService struct {
	store store.Store
	clock *Clock
}

// NewLiveViewService creates a new live view service
func NewLiveViewService(st store.Store, clock *Clock) *LiveViewService {
	return &LiveViewService{store: st, clock: clock}
}

// GetLivePage evaluates the live view for the given query.
func (s *LiveViewService) GetLivePage(q LiveQuery) (*LivePage, error) {
	events, err := s.store.ListEvents()
	if err != nil {
		return nil, err
	}
	rules, err := s.store.ListRules()
	if err != nil {
		return nil, err
	}

	ruleIndex := make(map[uint]models.AlertRule, len(rules))
	for _, r := range rules {
		ruleIndex[r.ID] = r
	}

	page := BuildLiveView(events, ruleIndex, s.clock.Now(), q)
	return &page, nil
}
