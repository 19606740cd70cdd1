package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alert-bridge/backend/internal/model"
	"github.com/alert-bridge/backend/internal/service"
)

type WebhookHandler struct {
	svc *service.IngestService
}

func NewWebhookHandler(svc *service.IngestService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// Azure godoc
// @Summary Receive an Azure Monitor common schema alert
// @Description Normalizes the alert, runs the scoped task search and creates a RunSession when matching tasks are found.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body model.AzureWebhook true "Azure Monitor common alert schema payload"
// @Success 200 {object} model.WebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /webhooks/azure [post]
func (h *WebhookHandler) Azure(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.svc.ProcessAzureWebhook(c.Request.Context(), payload)
	if err != nil {
		log.Printf("Failed to process azure webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Printf("Processed azure webhook: alertType=%s, strategy=%s, taskCount=%d",
		result.AlertType, result.Strategy, result.TaskCount)

	c.JSON(http.StatusOK, model.WebhookResponse{
		Status: "processed",
		Data:   result,
	})
}

// Dynatrace godoc
// @Summary Receive a Dynatrace problem notification
// @Tags webhooks
// @Accept json
// @Produce json
// @Param request body model.DynatraceWebhook true "Dynatrace problem payload"
// @Success 200 {object} model.WebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /webhooks/dynatrace [post]
func (h *WebhookHandler) Dynatrace(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.svc.ProcessDynatraceWebhook(c.Request.Context(), payload)
	if err != nil {
		log.Printf("Failed to process dynatrace webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	log.Printf("Processed dynatrace webhook: entities=%d, strategy=%s, taskCount=%d",
		len(result.Entities), result.Strategy, result.TaskCount)

	c.JSON(http.StatusOK, model.WebhookResponse{
		Status: "processed",
		Data:   result,
	})
}

// PagerDuty godoc
// @Summary Receive a PagerDuty incident webhook
// @Description Creates a RunSession from a fallback search and posts its URL back to the incident as a note.
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} model.WebhookResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /webhooks/pagerduty [post]
func (h *WebhookHandler) PagerDuty(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	result, err := h.svc.ProcessPagerDutyWebhook(c.Request.Context(), payload)
	if err != nil {
		log.Printf("Failed to process pagerduty webhook: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	c.JSON(http.StatusOK, model.WebhookResponse{
		Status: "processed",
		Data:   result,
	})
}
