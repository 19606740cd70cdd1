package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alert-bridge/backend/internal/db"
	"github.com/alert-bridge/backend/internal/model"
)

type AlertHandler struct {
	repo *db.Postgres
}

func NewAlertHandler(repo *db.Postgres) *AlertHandler {
	return &AlertHandler{repo: repo}
}

// List godoc
// @Summary List recent alerts
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows to return (default 100)"
// @Success 200 {object} model.AlertListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	alerts, err := h.repo.GetAlertList(limit)
	if err != nil {
		log.Printf("Failed to list alerts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	c.JSON(http.StatusOK, model.AlertListResponse{
		Status: "ok",
		Data:   alerts,
	})
}

// Detail godoc
// @Summary Get an alert by ID
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} model.AlertDetailResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id} [get]
func (h *AlertHandler) Detail(c *gin.Context) {
	alertID := c.Param("id")

	alert, err := h.repo.GetAlertDetail(alertID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}

	c.JSON(http.StatusOK, model.AlertDetailResponse{
		Status: "ok",
		Data:   alert,
	})
}

// Searches godoc
// @Summary List search attempts recorded for an alert
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} model.SearchAttemptListResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id}/searches [get]
func (h *AlertHandler) Searches(c *gin.Context) {
	alertID := c.Param("id")

	attempts, err := h.repo.GetSearchAttemptsByAlertID(alertID)
	if err != nil {
		log.Printf("Failed to list search attempts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list search attempts"})
		return
	}

	c.JSON(http.StatusOK, model.SearchAttemptListResponse{
		Status: "ok",
		Data:   attempts,
	})
}
