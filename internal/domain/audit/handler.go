package audit

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carelink/hms/internal/platform/auth"
	"github.com/carelink/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("", auth.RequireRole("admin"))
	admin.GET("/audit-logs", h.ListEntries)
	admin.GET("/audit-logs/:id", h.GetEntry)
	api.POST("/audit-logs", h.RecordEntry)
}

// recordRequest is the JSON body for POST /audit-logs. The acting user comes
// from the authenticated context, never from the body.
type recordRequest struct {
	Action       string  `json:"action"`
	Resource     string  `json:"resource"`
	ResourceID   *string `json:"resource_id"`
	Details      *string `json:"details"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message"`
	IPAddress    string  `json:"ip_address"`
	UserAgent    string  `json:"user_agent"`
}

func (h *Handler) RecordEntry(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	entry := &Entry{
		UserID:       auth.UserIDFromContext(ctx),
		UserRole:     auth.RoleFromContext(ctx),
		Action:       req.Action,
		Resource:     req.Resource,
		ResourceID:   req.ResourceID,
		Details:      req.Details,
		Status:       req.Status,
		ErrorMessage: req.ErrorMessage,
		IPAddress:    req.IPAddress,
		UserAgent:    req.UserAgent,
	}
	if entry.IPAddress == "" {
		entry.IPAddress = c.RealIP()
	}
	if entry.UserAgent == "" {
		entry.UserAgent = c.Request().UserAgent()
	}

	if err := h.svc.Record(ctx, entry); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handler) GetEntry(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.GetEntry(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "audit entry not found")
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) ListEntries(c echo.Context) error {
	pg := pagination.FromContext(c)

	f := Filter{
		UserID:   c.QueryParam("user_id"),
		Action:   c.QueryParam("action"),
		Resource: c.QueryParam("resource"),
		Status:   c.QueryParam("status"),
	}
	if v := c.QueryParam("start_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date")
		}
		f.StartDate = &t
	}
	if v := c.QueryParam("end_date"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date")
		}
		f.EndDate = &t
	}

	items, total, err := h.svc.SearchEntries(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
