package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/dashboard"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
)

type Handler struct {
	service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/calendar", h.GetCalendar)
}

func (h *Handler) GetDashboard(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), limit)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(overview))
}

// GetCalendar accepts year, month, nav (months to move, usually -1 or 1)
// and date (the selected day).
func (h *Handler) GetCalendar(c *gin.Context) {
	year, err := intQuery(c, "year")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	month, err := intQuery(c, "month")
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	nav, err := intQuery(c, "nav")
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	var selected model.Date
	if raw := c.Query("date"); raw != "" {
		selected, err = model.ParseDate(raw)
		if err != nil {
			handler.RespondError(c, apperrors.Validation(map[string]string{
				"date": "date must be formatted as YYYY-MM-DD",
			}))
			return
		}
	}

	view, err := h.service.Calendar(c.Request.Context(), year, time.Month(month), nav, selected)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.Validation(map[string]string{key: key + " must be an integer"})
	}
	return n, nil
}
