package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWorkflowStatus probes the workflow orchestrator connection
func (h *SentinelHandler) GetWorkflowStatus(c *gin.Context) {
	if h.workflowAPI == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "workflow integration is not configured"})
		return
	}
	c.JSON(http.StatusOK, h.workflowAPI.CheckConnection(c.Request.Context()))
}

// GetDeployments lists the orchestrator's deployments, best-effort
func (h *SentinelHandler) GetDeployments(c *gin.Context) {
	if h.workflowAPI == nil {
		c.JSON(http.StatusOK, gin.H{"deployments": []interface{}{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deployments": h.workflowAPI.ListDeployments(c.Request.Context())})
}

// TriggerDeployment starts a workflow run manually
func (h *SentinelHandler) TriggerDeployment(c *gin.Context) {
	if h.workflowAPI == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "workflow integration is not configured"})
		return
	}

	var body struct {
		Parameters map[string]interface{} `json:"parameters"`
	}
	_ = c.ShouldBindJSON(&body)

	runID, err := h.workflowAPI.TriggerRun(c.Request.Context(), c.Param("id"), body.Parameters)
	if err != nil || runID == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to trigger deployment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": runID, "ui_url": h.workflowAPI.RunUIURL(runID)})
}

// SyncWorkflows reconciles external run state onto events and rules
func (h *SentinelHandler) SyncWorkflows(c *gin.Context) {
	if h.syncService == nil {
		c.JSON(http.StatusOK, gin.H{"message": "workflow integration is not configured", "events_updated": 0})
		return
	}

	updated, err := h.syncService.Reconcile(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Workflow sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sync complete", "events_updated": updated})
}
