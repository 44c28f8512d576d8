package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/proptalk/proptalk/internal/errors"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/profile"
	"github.com/proptalk/proptalk/internal/service"
)

// FunnelHandler exposes funnel management. Every endpoint takes an optional
// user id (query parameter on GETs, body field on POSTs) and falls back to
// the configured default user, matching the single-operator deployment.
type FunnelHandler struct {
	profiles    *profile.Manager
	assistant   *service.AssistantService
	defaultUser string
}

// NewFunnelHandler creates a new funnel handler.
func NewFunnelHandler(profiles *profile.Manager, assistant *service.AssistantService, defaultUser string) *FunnelHandler {
	return &FunnelHandler{
		profiles:    profiles,
		assistant:   assistant,
		defaultUser: defaultUser,
	}
}

// List handles GET /api/v1/funnels.
func (h *FunnelHandler) List(c *gin.Context) {
	userID := h.userOrDefault(c.Query("user_id"))

	funnels, activeID, err := h.profiles.ListFunnels(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list funnels", err)
		return
	}

	c.JSON(http.StatusOK, model.FunnelsResponse{
		Funnels:        funnels,
		ActiveFunnelID: activeID,
	})
}

// Create handles POST /api/v1/funnels. The body is optional; an empty one
// creates a default-named funnel for the default user.
func (h *FunnelHandler) Create(c *gin.Context) {
	var req model.CreateFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request: "+err.Error(), nil)
		return
	}

	funnel, err := h.profiles.CreateFunnel(c.Request.Context(), h.userOrDefault(req.UserID), req.Name)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to create funnel", err)
		return
	}

	c.JSON(http.StatusCreated, funnel)
}

// Active handles GET /api/v1/funnels/active.
func (h *FunnelHandler) Active(c *gin.Context) {
	userID := h.userOrDefault(c.Query("user_id"))

	funnel, err := h.profiles.ActiveFunnel(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load active funnel", err)
		return
	}

	c.JSON(http.StatusOK, funnel)
}

// Activate handles POST /api/v1/funnels/:id/activate.
func (h *FunnelHandler) Activate(c *gin.Context) {
	funnelID := c.Param("id")

	var req model.SwitchFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, "Invalid request: "+err.Error(), nil)
		return
	}
	userID := h.userOrDefault(req.UserID)

	if err := h.profiles.SwitchFunnel(c.Request.Context(), userID, funnelID); err != nil {
		switch {
		case errors.Is(err, profile.ErrUserNotFound):
			apierrors.NotFound(c, "User not found")
		case errors.Is(err, profile.ErrFunnelNotFound):
			apierrors.NotFound(c, "Funnel not found")
		default:
			apierrors.InternalServerError(c, "Failed to switch funnel", err)
		}
		return
	}

	funnel, err := h.profiles.ActiveFunnel(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load active funnel", err)
		return
	}

	c.JSON(http.StatusOK, funnel)
}

// ActiveResults handles GET /api/v1/funnels/active/results: the compact
// result set for the active funnel's current criteria.
func (h *FunnelHandler) ActiveResults(c *gin.Context) {
	userID := h.userOrDefault(c.Query("user_id"))
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}

	funnel, results, err := h.assistant.ActiveResults(c.Request.Context(), userID, limit)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute results", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"funnel":  funnel,
		"results": results,
		"total":   len(results),
	})
}

func (h *FunnelHandler) userOrDefault(userID string) string {
	if userID != "" {
		return userID
	}
	return h.defaultUser
}
