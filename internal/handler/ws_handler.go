package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/licensa/dlexam-backend/internal/model"
	"github.com/licensa/dlexam-backend/internal/service"
	ws "github.com/licensa/dlexam-backend/internal/websocket"
)

const monitorTickInterval = 5 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live session state to staff monitors.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorSession godoc
// WS /ws/v1/sessions/:session_id/monitor
// Pushes a MonitorTick every few seconds: status, remaining time, answered
// count. The stream ends when the session leaves the active state.
func (h *WSHandler) MonitorSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Monitor connected")

	// All writes go through one serialized writer: the pong below races the
	// tick loop on the same connection otherwise.
	writer := ws.NewWriter(conn)

	// Drain client messages so pings are answered and closes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				return
			}
			if msg.Action == ws.ActionPing {
				writer.WriteTyped(ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	ticker := time.NewTicker(monitorTickInterval)
	defer ticker.Stop()

	for {
		session, err := h.sessions.GetSession(c.Request.Context(), uuid.Nil, sessionID)
		if err != nil {
			writer.WriteError("session unavailable")
			return
		}

		if session.Status != model.SessionStatusActive {
			writer.WriteTyped(ws.EndedResponse{Event: ws.EventEnded, Status: string(session.Status)})
			wsLog.Info().Str("status", string(session.Status)).Msg("Monitor stream ended")
			return
		}

		answered := 0
		for _, a := range session.Answers {
			if a.Answered() {
				answered++
			}
		}
		remaining := int(time.Until(session.EndTime).Seconds())
		if remaining < 0 {
			remaining = 0
		}

		if err := writer.WriteTyped(ws.MonitorTick{
			Event:            ws.EventTick,
			SessionID:        sessionID.String(),
			Status:           string(session.Status),
			RemainingSeconds: remaining,
			AnsweredCount:    answered,
			TotalQuestions:   len(session.Questions),
			BookmarkedCount:  len(session.Bookmarks),
		}); err != nil {
			wsLog.Debug().Msg("Monitor disconnected")
			return
		}

		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
