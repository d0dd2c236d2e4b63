package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-labs/sentinel/internal/services"
	"github.com/sentinel-labs/sentinel/internal/store"
)

// GetLiveView returns one page of the live event blotter
func (h *SentinelHandler) GetLiveView(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	query := services.LiveQuery{
		SortColumn: c.Query("sort"),
		SortDesc:   c.DefaultQuery("desc", "true") == "true",
		Page:       page,
		PageSize:   pageSize,
		Filters: services.LiveFilters{
			Importance:    c.Query("importance"),
			Category:      c.Query("category"),
			WorkflowState: c.Query("workflow_state"),
		},
	}

	result, err := h.liveView.GetLivePage(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build live view"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHistory returns one page of the audit history
func (h *SentinelHandler) GetHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	filters := services.HistoryFilters{
		Importance:    c.Query("importance"),
		SearchText:    c.Query("search"),
		ExternalState: c.Query("workflow_state"),
	}
	if start, ok := parseDate(c.Query("start_date")); ok {
		filters.StartDate = &start
	}
	if end, ok := parseDate(c.Query("end_date")); ok {
		filters.EndDate = &end
	}

	result, err := h.history.GetPage(filters, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// AcknowledgeEvent marks an event acknowledged with an optional comment
func (h *SentinelHandler) AcknowledgeEvent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body struct {
		Comment string `json:"comment"`
	}
	// An empty body is fine; the comment is optional.
	_ = c.ShouldBindJSON(&body)

	event, err := h.eventService.Acknowledge(id, body.Comment)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to acknowledge event"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// GetStats returns the dashboard counters
func (h *SentinelHandler) GetStats(c *gin.Context) {
	stats, err := h.eventService.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RunSweep executes the trigger sweep immediately ("check now")
func (h *SentinelHandler) RunSweep(c *gin.Context) {
	created, err := h.sweepService.Sweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sweep complete", "events_created": created})
}

// GenerateMockAlerts fabricates random events from the active rules
func (h *SentinelHandler) GenerateMockAlerts(c *gin.Context) {
	generated, err := h.eventService.GenerateMockAlerts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate mock alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mock alerts generated", "count": generated})
}

// Tick advances the dashboard clock; the UI calls this on page load and
// on its polling interval
func (h *SentinelHandler) Tick(c *gin.Context) {
	now := h.clock.Tick()
	c.JSON(http.StatusOK, gin.H{"now": now})
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
