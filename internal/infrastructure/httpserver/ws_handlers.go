package httpserver

import (
	"net/http"
	"strings"

	"github.com/avatarctic/live-catalog/internal/infrastructure/ws"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are already filtered by the CORS middleware for the REST
	// surface; the feed is receive-only and carries no data beyond "re-fetch".
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveUpdates upgrades the connection and attaches it to the broadcast hub.
// A plain HTTP GET (no Upgrade header) gets a 426 hint instead, which makes
// the endpoint probeable from a browser address bar.
func (s *Server) liveUpdates(c echo.Context) error {
	if !strings.EqualFold(c.Request().Header.Get("Upgrade"), "websocket") {
		return c.String(http.StatusUpgradeRequired, "WebSocket endpoint. Use ws:// or wss:// to connect.")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		if s.logger != nil {
			s.logger.WithError(err).Warn("websocket upgrade failed")
		}
		return nil
	}

	session := ws.NewSession(conn)
	s.hub.Register(session)
	if s.logger != nil {
		s.logger.WithField("remote", conn.RemoteAddr().String()).Info("live session connected")
	}

	go s.drainSession(session, conn)
	return nil
}

// drainSession reads until the connection breaks. The channel is
// receive-only from the client's perspective, so inbound frames are
// discarded; the loop exists to detect close and unregister promptly.
func (s *Server) drainSession(session ws.Session, conn *websocket.Conn) {
	defer func() {
		s.hub.Unregister(session)
		_ = conn.Close()
		if s.logger != nil {
			s.logger.WithField("remote", conn.RemoteAddr().String()).Info("live session disconnected")
		}
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
