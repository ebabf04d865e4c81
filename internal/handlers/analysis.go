package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/logger"
)

type AnalysisHandler struct {
	analysisService *services.AnalysisService
}

func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

// Analyze handles the AI technical-profile endpoint
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var request models.AnalysisRequest
	if err := c.ShouldBindJSON(&request); err != nil || request.GitHubData == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "GitHub data is required"})
		return
	}

	logger.WithField("username", request.GitHubData.User.Login).Info("Analyzing profile")

	analysis := h.analysisService.Analyze(c.Request.Context(), request.GitHubData)
	c.JSON(http.StatusOK, models.AnalysisResponse{Analysis: *analysis})
}
