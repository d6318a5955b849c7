package chat

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/carelink/hms/internal/platform/auth"
	"github.com/carelink/hms/pkg/pagination"
)

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler exposes the chat WebSocket endpoint and the message REST surface.
type Handler struct {
	hub *Hub
	svc *Service
}

func NewHandler(hub *Hub, svc *Service) *Handler {
	return &Handler{hub: hub, svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/chat/ws", h.HandleConnect)
	g.POST("/chat/messages", h.HandleSend)
	g.GET("/chat/messages/:peer", h.HandleConversation)
}

// clientMessage is an inbound message over the socket.
type clientMessage struct {
	ReceiverID    string  `json:"receiver_id"`
	Content       string  `json:"content"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}

// HandleConnect upgrades the connection, registers a subscriber for the
// authenticated user, and starts read/write pumps.
func (h *Handler) HandleConnect(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := &Subscriber{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, 256),
	}
	h.hub.Register(sub)

	go h.writePump(sub, ws)
	go h.readPump(sub, ws)

	return nil
}

// readPump reads messages from the socket and routes them through the
// service so socket sends and REST sends behave identically.
func (h *Handler) readPump(sub *Subscriber, ws *gorillawebsocket.Conn) {
	defer func() {
		h.hub.Unregister(sub)
		ws.Close()
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue // Ignore malformed messages.
		}

		_, _ = h.svc.Send(context.Background(), sub.UserID, msg.ReceiverID, msg.Content, msg.AttachmentURL)
	}
}

// writePump writes messages from the Send channel to the socket.
func (h *Handler) writePump(sub *Subscriber, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range sub.Send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// HandleSend handles POST /chat/messages for the authenticated user.
func (h *Handler) HandleSend(c echo.Context) error {
	var req clientMessage
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	senderID := auth.UserIDFromContext(c.Request().Context())
	m, err := h.svc.Send(c.Request().Context(), senderID, req.ReceiverID, req.Content, req.AttachmentURL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

// HandleConversation handles GET /chat/messages/:peer.
func (h *Handler) HandleConversation(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	peer := c.Param("peer")
	pg := pagination.FromContext(c)

	items, total, err := h.svc.Conversation(c.Request().Context(), userID, peer, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
