package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"phonefinder/internal/model"
	"phonefinder/internal/service"
)

// RecommendHandler handles recommendation and intent HTTP requests
type RecommendHandler struct {
	service *service.RecommendService
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(svc *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{service: svc}
}

// Recommend handles POST /api/v1/recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if req.TopN < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top_n must not be negative"})
		return
	}

	response, err := h.service.Recommend(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Recommendation failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Normalize handles POST /api/v1/intent/normalize
func (h *RecommendHandler) Normalize(c *gin.Context) {
	var req model.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.service.Normalize(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Normalization failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// Count handles POST /api/v1/intent/count
func (h *RecommendHandler) Count(c *gin.Context) {
	var req model.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	response, err := h.service.Count(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Count failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetPhone handles GET /api/v1/phones/:slug
func (h *RecommendHandler) GetPhone(c *gin.Context) {
	phone, err := h.service.GetPhone(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPhoneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Phone not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get phone: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, phone)
}

// GetRecommendation handles GET /api/v1/recommendations/:id
func (h *RecommendHandler) GetRecommendation(c *gin.Context) {
	detail, err := h.service.GetRecommendation(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecommendationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Recommendation not found"})
		case errors.Is(err, service.ErrNoHistory):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recommendation history is not enabled"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recommendation: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}
