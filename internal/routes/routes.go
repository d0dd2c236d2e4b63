package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sentinel-labs/sentinel/internal/handlers"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine) {
	h := handlers.GetGlobalHandler()

	// API routes
	api := r.Group("/api/v1")
	{
		// Rule lifecycle
		rules := api.Group("/rules")
		{
			rules.GET("", h.GetRules)
			rules.POST("", h.CreateRule)
			rules.GET("/:id", h.GetRule)
			rules.GET("/:id/clone", h.CloneRule)
			rules.POST("/:id/toggle", h.ToggleRule)
			rules.DELETE("/:id", h.DeleteRule)
		}

		// Event projections and commands
		events := api.Group("/events")
		{
			events.GET("/live", h.GetLiveView)
			events.GET("/history", h.GetHistory)
			events.POST("/:id/acknowledge", h.AcknowledgeEvent)
			events.POST("/mock", h.GenerateMockAlerts)
		}

		// Workflow orchestrator integration
		wf := api.Group("/workflow")
		{
			wf.GET("/status", h.GetWorkflowStatus)
			wf.GET("/deployments", h.GetDeployments)
			wf.POST("/deployments/:id/run", h.TriggerDeployment)
			wf.POST("/sync", h.SyncWorkflows)
		}

		api.GET("/triggers", h.GetTriggers)
		api.GET("/stats", h.GetStats)
		api.POST("/sweep", h.RunSweep)
		api.POST("/tick", h.Tick)
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "sentinel",
		})
	})

	// Root endpoint
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Sentinel Alert Dashboard",
			"version": "1.0.0",
			"endpoints": gin.H{
				"rules":   "/api/v1/rules",
				"live":    "/api/v1/events/live",
				"history": "/api/v1/events/history",
				"health":  "/health",
			},
		})
	})
}
