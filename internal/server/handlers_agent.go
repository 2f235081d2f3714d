package server

import (
	"net/http"
	"time"

	"banking-backend-go/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *handlers) agentStatus(c *gin.Context) {
	if h.Agent == nil {
		c.JSON(http.StatusOK, gin.H{"status": "unavailable", "error": "agent client not configured"})
		return
	}

	c.JSON(http.StatusOK, h.Agent.Status(c.Request.Context()))
}

func (h *handlers) agentQuery(c *gin.Context) {
	var req models.AgentQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		respondDetail(c, http.StatusBadRequest, "Query is required")
		return
	}

	if h.Agent == nil {
		c.JSON(http.StatusOK, gin.H{"status": "query_unavailable", "query": req.Query})
		return
	}

	c.JSON(http.StatusOK, h.Agent.Query(c.Request.Context(), req.Query))
}

// updateConfig repoints the agent integration at runtime. Only the agent
// URL is adjustable; everything else requires a restart.
func (h *handlers) updateConfig(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		respondDetail(c, http.StatusBadRequest, err.Error())
		return
	}

	agentURL, ok := req["agent_url"].(string)
	if !ok || agentURL == "" {
		respondDetail(c, http.StatusBadRequest, "agent_url is required")
		return
	}

	if h.Agent == nil {
		respondDetail(c, http.StatusServiceUnavailable, "Agent integration not configured")
		return
	}

	h.Agent.SetBaseURL(agentURL)

	c.JSON(http.StatusOK, gin.H{
		"message":   "Configuration updated",
		"agent_url": agentURL,
	})
}

// health is the unauthenticated composite health report. Collaborator
// probes run with the request context so a hung dependency cannot pin
// the handler past the server timeouts.
func (h *handlers) health(c *gin.Context) {
	ctx := c.Request.Context()

	status := "healthy"
	database := "connected"
	if err := h.Ledger.HealthCheck(ctx); err != nil {
		status = "degraded"
		database = "error"
	}

	response := gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.Agent != nil {
		agentStatus := h.Agent.Status(ctx)
		response["agent"] = agentStatus["status"]
	} else {
		response["agent"] = "unavailable"
	}

	if h.Bank != nil {
		response["bank"] = h.Bank.CheckConnection(ctx).Status
	} else {
		response["bank"] = models.BankStatusDisconnected
	}

	c.JSON(http.StatusOK, response)
}
