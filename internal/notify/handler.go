package notify

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carelink/hms/internal/platform/auth"
	"github.com/carelink/hms/pkg/pagination"
)

// Handler exposes notification operations over HTTP via Echo.
type Handler struct {
	store      *Store
	dispatcher *Dispatcher
}

func NewHandler(store *Store, dispatcher *Dispatcher) *Handler {
	return &Handler{store: store, dispatcher: dispatcher}
}

// RegisterRoutes registers all notification routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/notifications/dispatch", h.HandleDispatch, auth.RequireRole("doctor", "nurse", "receptionist"))
	g.GET("/notifications", h.HandleList)
	g.GET("/notifications/unread-count", h.HandleUnreadCount)
	g.POST("/notifications/read-all", h.HandleMarkAllRead)
	g.POST("/notifications/:id/read", h.HandleMarkRead)
	g.DELETE("/notifications/:id", h.HandleRemove)
	g.DELETE("/notifications", h.HandleClear)
	g.GET("/notifications/preferences", h.HandleGetPreferences)
	g.PUT("/notifications/preferences", h.HandleUpdatePreferences)
}

var validTypes = map[Type]bool{
	TypeAppointmentReminder: true,
	TypeTestResults:         true,
	TypePrescriptionReady:   true,
	TypeBillingUpdate:       true,
	TypeGeneral:             true,
}

var validCategories = map[Category]bool{
	CategoryAppointments:  true,
	CategoryPrescriptions: true,
	CategoryLabResults:    true,
	CategoryBilling:       true,
	CategorySystem:        true,
}

// HandleDispatch handles POST /notifications/dispatch.
func (h *Handler) HandleDispatch(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if req.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	if req.Type == "" {
		req.Type = TypeGeneral
	}
	if !validTypes[req.Type] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid type")
	}
	if req.Category == "" {
		req.Category = CategorySystem
	}
	if !validCategories[req.Category] {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category")
	}

	n, results := h.dispatcher.Dispatch(c.Request().Context(), req)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"notification": n,
		"channels":     results,
	})
}

// HandleList handles GET /notifications for the authenticated user.
func (h *Handler) HandleList(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	all := h.store.List(userID, 0)
	total := len(all)

	start := pg.Offset
	if start > total {
		start = total
	}
	end := start + pg.Limit
	if end > total {
		end = total
	}

	return c.JSON(http.StatusOK, pagination.NewResponse(all[start:end], total, pg.Limit, pg.Offset))
}

// HandleUnreadCount handles GET /notifications/unread-count.
func (h *Handler) HandleUnreadCount(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]int{
		"unread": h.store.UnreadCount(userID),
	})
}

// HandleMarkRead handles POST /notifications/:id/read. Unknown ids are a
// no-op and still return 204.
func (h *Handler) HandleMarkRead(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	h.store.MarkRead(userID, c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// HandleMarkAllRead handles POST /notifications/read-all.
func (h *Handler) HandleMarkAllRead(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	h.store.MarkAllRead(userID)
	return c.NoContent(http.StatusNoContent)
}

// HandleRemove handles DELETE /notifications/:id. Removing an absent id is a
// no-op and still returns 204.
func (h *Handler) HandleRemove(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	h.store.Remove(userID, c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// HandleClear handles DELETE /notifications.
func (h *Handler) HandleClear(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	h.store.Clear(userID)
	return c.NoContent(http.StatusNoContent)
}

// HandleGetPreferences handles GET /notifications/preferences.
func (h *Handler) HandleGetPreferences(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	return c.JSON(http.StatusOK, h.store.Preferences(userID))
}

// HandleUpdatePreferences handles PUT /notifications/preferences with a
// partial or full preference map.
func (h *Handler) HandleUpdatePreferences(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())

	var prefs map[string]bool
	if err := c.Bind(&prefs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h.store.UpdatePreferences(userID, prefs)
	return c.JSON(http.StatusOK, h.store.Preferences(userID))
}
