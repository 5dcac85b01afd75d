package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-admin/internal/handler"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/auth"
	"github.com/jwalitptl/dental-admin/internal/service/dashboard"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
)

type Handler struct {
	svc       *auth.Service
	dashboard *dashboard.Service
}

func NewHandler(svc *auth.Service, dashboard *dashboard.Service) *Handler {
	return &Handler{svc: svc, dashboard: dashboard}
}

// RegisterPublicRoutes mounts the routes that work without a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}

// RegisterRoutes mounts the routes that need a session; r must already
// authenticate.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)
	r.GET("/me", h.Me)
	r.GET("/me/overview", h.MyOverview)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BindError(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Logout(c *gin.Context) {
	session, ok := auth.SessionFrom(c.Request.Context())
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), session); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}

func (h *Handler) Me(c *gin.Context) {
	session, ok := auth.SessionFrom(c.Request.Context())
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(session))
}

func (h *Handler) MyOverview(c *gin.Context) {
	session, ok := auth.SessionFrom(c.Request.Context())
	if !ok {
		handler.RespondError(c, apperrors.Unauthorized("authentication required"))
		return
	}

	overview, err := h.dashboard.PatientOverview(c.Request.Context(), session)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(overview))
}
