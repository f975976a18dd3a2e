package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/campmeet-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/campmeet-api/internal/realtime"
	"github.com/vietanh2810/campmeet-api/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS layer; the JWT gate runs before the
		// upgrade.
		return true
	},
}

type StatsProvider interface {
	Stats(ctx context.Context) service.DashboardStats
}

type RealtimeHandler struct {
	hub   *realtime.Hub
	stats StatsProvider
}

func NewRealtimeHandler(hub *realtime.Hub, stats StatsProvider) *RealtimeHandler {
	return &RealtimeHandler{
		hub:   hub,
		stats: stats,
	}
}

// HandleSubscribe godoc
//
//	@Summary     Upgrades to a websocket feed of attendance events
//	@Tags        realtime
//	@Success     101
//	@Failure     400 {object} response.Err
//	@Security    BearerAuth
//	@Router      /realtime/ws [get]
func (h *RealtimeHandler) HandleSubscribe(ctx *gin.Context) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	handle := h.hub.Subscribe(conn)
	zap.L().Info("realtime client connected", zap.String("handle", handle))

	go h.readPump(conn, handle)
}

// readPump discards inbound frames; the feed is one-way. Its job is to
// notice the disconnect and release the registration in the hub.
func (h *RealtimeHandler) readPump(conn *websocket.Conn, handle string) {
	defer h.hub.Unsubscribe(handle)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			zap.L().Info("realtime client disconnected", zap.String("handle", handle))
			return
		}
	}
}

// HandlePoll godoc
//
//	@Summary     Returns the current stats snapshot for clients without a websocket
//	@Tags        realtime
//	@Produce     json
//	@Success     200 {object} response.PollResponse
//	@Security    BearerAuth
//	@Router      /realtime/poll [get]
func (h *RealtimeHandler) HandlePoll(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, response.PollResponse{
		Stats:           h.stats.Stats(ctx.Request.Context()),
		ConnectionCount: h.hub.ConnectionCount(),
		ServerTime:      time.Now().UTC().Format(time.RFC3339),
	})
}
