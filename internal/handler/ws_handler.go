package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/evaluia/examcore-backend/internal/netmon"
	"github.com/evaluia/examcore-backend/internal/queue"
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

// opsEvent is one frame on the operational stream.
type opsEvent struct {
	Network    netmon.Status `json:"network"`
	QueueDepth int           `json:"queue_depth"`
	At         time.Time     `json:"at"`
}

// WSHandler streams live connectivity and queue state to admin dashboards.
type WSHandler struct {
	monitor  *netmon.Monitor
	queue    *queue.DurableQueue
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(monitor *netmon.Monitor, q *queue.DurableQueue, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		monitor:  monitor,
		queue:    q,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// OpsStream godoc
// WS /ws/v1/admin/ops/stream
// Pushes an event on every network transition and on a heartbeat tick, so
// dashboards see queue growth even while the status is unchanged.
func (h *WSHandler) OpsStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.monitor.Subscribe()
	defer h.monitor.Unsubscribe(sub)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	// Reader goroutine: its only job is to notice the peer going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(st netmon.Status) bool {
		ev := opsEvent{
			Network:    st,
			QueueDepth: h.queue.Len(),
			At:         time.Now().UTC(),
		}
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Debug().Err(err).Msg("Ops stream write failed, closing")
			return false
		}
		return true
	}

	if !send(h.monitor.Status()) {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case st := <-sub:
			if !send(st) {
				return
			}
		case <-ticker.C:
			if !send(h.monitor.Status()) {
				return
			}
		}
	}
}
