package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sentinel-labs/sentinel/internal/services"
	"github.com/sentinel-labs/sentinel/internal/store"
	"github.com/sentinel-labs/sentinel/trigger"
)

// GetRules returns all alert rules
func (h *SentinelHandler) GetRules(c *gin.Context) {
	rules, err := h.ruleService.ListRules()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rules": rules, "total": len(rules)})
}

// GetRule returns a single rule by ID
func (h *SentinelHandler) GetRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.GetRule(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// CreateRule validates and stores a new alert rule
func (h *SentinelHandler) CreateRule(c *gin.Context) {
	var draft services.RuleDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rule, err := h.ruleService.CreateRule(draft)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// CloneRule returns a creation draft copied from an existing rule
func (h *SentinelHandler) CloneRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	draft, err := h.ruleService.CloneRule(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, draft)
}

// ToggleRule flips a rule's active flag
func (h *SentinelHandler) ToggleRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.ToggleRule(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes a rule; its events remain as orphans
func (h *SentinelHandler) DeleteRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.ruleService.DeleteRule(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}

// GetTriggers lists all discoverable trigger implementations
func (h *SentinelHandler) GetTriggers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"triggers": trigger.Discover()})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}
