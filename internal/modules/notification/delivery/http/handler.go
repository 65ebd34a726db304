package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"sheesh.app/server/internal/metrics"
	notifService "sheesh.app/server/internal/modules/notification/service"
	"sheesh.app/server/pkg/apperror"
	"sheesh.app/server/pkg/response"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 60 * time.Second
)

type NotificationHandler struct {
	service  notifService.NotificationService
	upgrader websocket.Upgrader

	// pingPeriod must stay below pongWait.
	pingPeriod time.Duration
	pongWait   time.Duration
}

func NewNotificationHandler(service notifService.NotificationService, allowedOrigins []string) *NotificationHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &NotificationHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
		pingPeriod: pongWait * 9 / 10,
		pongWait:   pongWait,
	}
}

// HandleLeaderboardSocket streams leaderboard events of one group to the client.
func (h *NotificationHandler) HandleLeaderboardSocket(c *gin.Context) {
	if _, err := response.GetUserID(c); err != nil {
		response.ResponseError(c, err)
		return
	}

	groupID, err := response.ParseID(c, "group_id")
	if err != nil {
		response.ResponseError(c, apperror.New(http.StatusBadRequest, "invalid group id", err))
		return
	}

	if !h.service.Enabled() {
		response.ResponseError(c, apperror.New(http.StatusServiceUnavailable, "", notifService.ErrLiveUpdatesDisabled))
		return
	}

	pubsub, err := h.service.Subscribe(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, notifService.ErrLiveUpdatesDisabled) {
			err = apperror.New(http.StatusServiceUnavailable, "", err)
		}
		response.ResponseError(c, err)
		return
	}
	defer pubsub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	metrics.SubscriberConnected()
	defer metrics.SubscriberDisconnected()

	h.stream(c.Request.Context(), conn, pubsub.Channel())
}

// stream forwards events to conn and pings it until the client goes away, stops answering
// pings, or ctx ends.
func (h *NotificationHandler) stream(ctx context.Context, conn *websocket.Conn, events <-chan *redis.Message) {
	conn.SetReadDeadline(time.Now().Add(h.pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			// payload is already a JSON LeaderboardEvent
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write message to websocket: %v", err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
