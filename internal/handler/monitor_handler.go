package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/emergency0committee-hub/eec-backend/internal/middleware"
	"github.com/emergency0committee-hub/eec-backend/internal/model"
	"github.com/emergency0committee-hub/eec-backend/internal/response"
	"github.com/emergency0committee-hub/eec-backend/internal/service"
)

const (
	monitorRefreshInterval = 2 * time.Second
	keepAliveInterval      = 30 * time.Second
)

// MonitorHandler streams live session activity to staff over SSE.
type MonitorHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(sessionService *service.SessionService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// monitorSnapshot is the wire shape of one live-session row. Answers are
// reduced to a count; staff see progress, not content.
type monitorSnapshot struct {
	ID           string             `json:"id"`
	Phase        model.SessionPhase `json:"phase"`
	Name         string             `json:"name,omitempty"`
	School       string             `json:"school,omitempty"`
	CurrentPage  int                `json:"current_page"`
	Answered     int                `json:"answered"`
	RemainingSec int                `json:"remaining_sec"`
	Clock        string             `json:"clock"`
}

// LiveSessionsSSE godoc
// GET /api/v1/staff/monitor/live
func (h *MonitorHandler) LiveSessionsSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	refreshTicker := time.NewTicker(monitorRefreshInterval)
	defer refreshTicker.Stop()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Int("staff_id", claims.StaffID).Msg("Staff attached to live monitor SSE")

	h.sendSnapshot(c)

	for {
		select {
		case <-reqCtx.Done():
			h.log.Debug().Msg("Monitor SSE detached")
			return
		case <-refreshTicker.C:
			h.sendSnapshot(c)
		case <-keepAliveTicker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			c.Writer.Flush()
		}
	}
}

func (h *MonitorHandler) sendSnapshot(c *gin.Context) {
	snaps := h.sessionService.ListLive()

	rows := make([]monitorSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		rows = append(rows, monitorSnapshot{
			ID:           snap.ID.String(),
			Phase:        snap.Phase,
			Name:         snap.Profile.Name,
			School:       snap.Profile.School,
			CurrentPage:  snap.CurrentPage,
			Answered:     len(snap.Answers),
			RemainingSec: snap.RemainingSec,
			Clock:        snap.Clock,
		})
	}

	payload, err := json.Marshal(gin.H{"sessions": rows, "count": len(rows)})
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}
