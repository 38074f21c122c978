package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/engine"
	"github.com/emergency0committee-hub/eec-backend/internal/middleware"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
	"github.com/emergency0committee-hub/eec-backend/internal/timer"
	ws "github.com/emergency0committee-hub/eec-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
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

// WSHandler streams an assessment session over WebSocket: countdown ticks go
// out every second, answers and navigation come in as actions, and a forced
// submission on expiry reaches the browser on the same beat it happened.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// wsConn serializes writes; the tick pusher and the action loop both write.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (w *wsConn) send(v interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ws.WriteTyped(w.conn, v)
}

func (w *wsConn) sendError(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = ws.WriteError(w.conn, msg)
}

// SessionStream godoc
// WS /ws/v1/portal/stream?token=...
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session binding"})
		return
	}

	if _, err := h.sessionService.Get(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()
	conn := &wsConn{conn: raw}

	wsLog := h.log.With().Str("session_id", sessionID.String()).Logger()
	wsLog.Info().Msg("Participant connected")

	streamCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks, unsubscribe := h.sessionService.Subscribe(sessionID)
	defer unsubscribe()

	go h.pushTicks(streamCtx, conn, ticks)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(raw, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(streamCtx, conn, sessionID, &msg)
		case ws.ActionNavigate:
			h.handleNavigate(streamCtx, conn, sessionID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(streamCtx, conn, wsLog, sessionID)
		case ws.ActionPing:
			_ = conn.send(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.sendError("unknown action: " + string(msg.Action))
		}
	}
}

// pushTicks forwards countdown beats to the browser. On expiry the engine has
// already force-submitted; the browser just learns about it here.
func (h *WSHandler) pushTicks(ctx context.Context, conn *wsConn, ticks <-chan engine.TickResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-ticks:
			if !ok {
				return
			}
			_ = conn.send(ws.TickResponse{
				Event:        ws.EventTick,
				RemainingSec: res.RemainingSec,
				Display:      timer.Format(res.RemainingSec),
			})
			if res.Expired && res.Submission != nil {
				_ = conn.send(ws.SubmittedResponse{
					Event:        ws.EventSubmitted,
					SubmissionID: res.Submission.ID.String(),
					Forced:       true,
				})
			}
		}
	}
}

func (h *WSHandler) handleAnswer(ctx context.Context, conn *wsConn, sessionID uuid.UUID, msg *ws.RequestPayload) {
	if msg.QuestionID == "" || msg.Answer == nil {
		conn.sendError("q_id and ans are required")
		return
	}

	// Question IDs key Redis hashes; only well-formed UUIDs get through.
	if _, err := uuid.Parse(msg.QuestionID); err != nil {
		conn.sendError("invalid q_id format")
		return
	}

	if _, err := h.sessionService.RecordAnswer(ctx, sessionID, msg.QuestionID, *msg.Answer); err != nil {
		conn.sendError(err.Error())
		return
	}
	_ = conn.send(ws.SuccessResponse{Event: ws.EventSuccess, Status: "saved"})
}

func (h *WSHandler) handleNavigate(ctx context.Context, conn *wsConn, sessionID uuid.UUID, msg *ws.RequestPayload) {
	page, err := h.sessionService.Navigate(ctx, sessionID, msg.Direction, msg.Page)
	if err != nil {
		conn.sendError(err.Error())
		return
	}
	_ = conn.send(ws.SuccessResponse{Event: ws.EventSuccess, Status: "moved", Page: page})
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *wsConn, wsLog zerolog.Logger, sessionID uuid.UUID) {
	sub, err := h.sessionService.End(ctx, sessionID)
	if err != nil {
		conn.sendError(err.Error())
		return
	}

	wsLog.Info().Bool("incomplete", sub.Incomplete).Msg("Session submitted over WebSocket")
	_ = conn.send(ws.SubmittedResponse{
		Event:        ws.EventSubmitted,
		SubmissionID: sub.ID.String(),
		Forced:       false,
	})
}
