package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gitfolio/gitfolio/internal/middleware"
	"github.com/gitfolio/gitfolio/internal/models"
	"github.com/gitfolio/gitfolio/internal/services"
	"github.com/gitfolio/gitfolio/pkg/logger"
	"github.com/sirupsen/logrus"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

// GetProfile handles the profile aggregation endpoint
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	var request models.ProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	username := strings.TrimSpace(request.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
		return
	}

	log := logger.WithFields(logrus.Fields{
		"username":      username,
		"force_refresh": request.ForceRefresh,
		"request_id":    middleware.GetRequestID(c),
	})
	log.Info("Fetching GitHub profile")

	response, err := h.profileService.GetProfile(c.Request.Context(), username, request.ForceRefresh)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	log.WithField("from_cache", response.FromCache).Info("Profile request served")
	c.JSON(http.StatusOK, response)
}

func (h *ProfileHandler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	if errors.Is(err, services.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var rateErr *services.RateLimitError
	if errors.As(err, &rateErr) {
		body := gin.H{
			"error":   "GitHub API rate limit exceeded",
			"message": "GitHub API rate limit exceeded. Please try again later or configure an access token.",
		}
		body["rateLimitRemaining"] = rateErr.Remaining
		if !rateErr.Reset.IsZero() {
			body["rateLimitReset"] = rateErr.Reset.Unix()
		}
		c.JSON(http.StatusTooManyRequests, body)
		return
	}

	log.WithError(err).Error("Failed to fetch GitHub profile")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch GitHub data"})
}
