package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alert-bridge/backend/internal/model"
	"github.com/alert-bridge/backend/internal/service"
)

type RunSessionHandler struct {
	svc *service.IngestService
}

func NewRunSessionHandler(svc *service.IngestService) *RunSessionHandler {
	return &RunSessionHandler{svc: svc}
}

// Summarize godoc
// @Summary Summarize a RunSession
// @Description Fetches the RunSession, aggregates its open issues and posts a summary to Slack when configured.
// @Tags runsessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "RunSession ID"
// @Success 200 {object} model.RunSessionSummaryResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/runsessions/{id}/summary [post]
func (h *RunSessionHandler) Summarize(c *gin.Context) {
	summary, err := h.svc.SummarizeRunSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		log.Printf("Failed to summarize runsession: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch runsession"})
		return
	}

	c.JSON(http.StatusOK, model.RunSessionSummaryResponse{
		Status: "ok",
		Data:   summary,
	})
}

// Expand godoc
// @Summary Add tasks to an existing RunSession
// @Description Re-runs the scoped task search for the given query and patches matching tasks into the RunSession.
// @Tags runsessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "RunSession ID"
// @Param request body model.RunSessionExpandRequest true "Search query"
// @Success 200 {object} model.WebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/runsessions/{id}/tasks [post]
func (h *RunSessionHandler) Expand(c *gin.Context) {
	var req model.RunSessionExpandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if user := GetAuthUser(c); user != nil {
		log.Printf("RunSession %s expansion requested by %s", c.Param("id"), user.LoginID)
	}

	result, err := h.svc.ExpandRunSession(c.Request.Context(), c.Param("id"), req.Query)
	if err != nil {
		log.Printf("Failed to expand runsession: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to patch runsession"})
		return
	}

	c.JSON(http.StatusOK, model.WebhookResponse{
		Status: "processed",
		Data:   result,
	})
}
