package handler

import (
	"net/http"
	"strings"

	"github.com/LDK/javascriv-api/internal/auth"
	"github.com/LDK/javascriv-api/internal/realtime"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const wsBufferSize = 1024

type WebSocketHandler struct {
	hub      *realtime.Hub
	projects ProjectAuthorizer
	upgrader websocket.Upgrader
}

// NewWebSocketHandler only upgrades browser requests from allowedOrigins.
// A "*" entry allows any origin.
func NewWebSocketHandler(hub *realtime.Hub, projects ProjectAuthorizer, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		projects: projects,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsBufferSize,
			WriteBufferSize: wsBufferSize,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// Subscribe upgrades the connection and streams the project's events until
// the client goes away.
func (h *WebSocketHandler) Subscribe(c echo.Context) error {
	userID, err := auth.GetUserID(c)
	if err != nil {
		return err
	}
	projectID, err := pathID(c, paramID)
	if err != nil {
		return err
	}

	if _, err := h.projects.Authorize(c.Request().Context(), projectID, userID); err != nil {
		return err
	}
	if !h.upgrader.CheckOrigin(c.Request()) {
		return respondError(c, http.StatusForbidden, msgWebsocketOrigin)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		c.Logger().Warnf("websocket upgrade failed for project %d: %v", projectID, err)
		return nil
	}

	realtime.NewClient(h.hub, conn, projectID, userID, auth.GetUsername(c)).Serve()
	return nil
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[strings.TrimRight(strings.TrimSpace(o), "/")] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] {
			return true
		}
		return set[strings.TrimRight(origin, "/")]
	}
}
