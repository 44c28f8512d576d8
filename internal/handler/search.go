package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/proptalk/proptalk/internal/errors"
	"github.com/proptalk/proptalk/internal/model"
	"github.com/proptalk/proptalk/internal/service"
)

// SearchHandler handles direct inventory queries.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles POST /api/v1/search. Limits are clamped by the service.
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, verrs)
			return
		}
		apierrors.BadRequest(c, "Invalid request: "+err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, h.search.Search(c.Request.Context(), &req))
}

// Properties handles GET /api/v1/properties, a raw page of the dataset.
func (h *SearchHandler) Properties(c *gin.Context) {
	limit, ok := intQuery(c, "limit", 0)
	if !ok {
		return
	}
	offset, ok := intQuery(c, "offset", 0)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.search.Properties(c.Request.Context(), limit, offset))
}

// intQuery parses an optional integer query parameter. On a malformed value
// it writes a 400 response and reports false.
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return value, true
}
