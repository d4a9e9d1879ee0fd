package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"phonefinder/internal/model"
	"phonefinder/internal/service"
)

var validActions = map[string]bool{
	"click":        true,
	"view_details": true,
	"purchase":     true,
	"dismiss":      true,
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	service *service.RecommendService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(svc *service.RecommendService) *FeedbackHandler {
	return &FeedbackHandler{service: svc}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, view_details, purchase, dismiss"})
		return
	}

	err := h.service.LogFeedback(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrPhoneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Phone not found"})
			return
		}
		if errors.Is(err, service.ErrRecommendationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recommendation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}
