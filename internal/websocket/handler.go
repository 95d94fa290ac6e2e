package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"pairchat/internal/domain"
	"pairchat/internal/services"
	"pairchat/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browsers cannot set Authorization headers on WebSocket
		// upgrades, so origin policy is enforced at the proxy.
		return true
	},
}

// controlFrame is the inbound client protocol: subscription management
// plus a presence heartbeat.
type controlFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel,omitempty"`
}

// ackFrame is sent in response to subscribe and unsubscribe requests.
type ackFrame struct {
	EventType string `json:"event_type"`
	Channel   string `json:"channel"`
}

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
	actionPing        = "ping"

	eventSubscribed   = "subscription.succeeded"
	eventUnsubscribed = "subscription.removed"
	eventDenied       = "subscription.denied"
)

// Handler upgrades authenticated HTTP requests to WebSocket connections
// and runs the per-connection read loop.
type Handler struct {
	hub        *Hub
	authorizer *ChannelAuthorizer
	auth       *services.AuthService
	users      *services.UserService
	presence   *services.PresenceService
	log        *logger.Logger
}

func NewHandler(hub *Hub, authorizer *ChannelAuthorizer, auth *services.AuthService, users *services.UserService, presence *services.PresenceService, log *logger.Logger) *Handler {
	return &Handler{
		hub:        hub,
		authorizer: authorizer,
		auth:       auth,
		users:      users,
		presence:   presence,
		log:        log,
	}
}

// Connect handles GET /ws. The access token rides in the query string
// because the browser WebSocket API cannot set headers.
func (h *Handler) Connect(c *gin.Context) {
	claims, err := h.auth.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.EnsureUser(c.Request.Context(), claims)
	if err != nil {
		h.log.Errorf("ensure user on ws connect: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("websocket upgrade: %v", err)
		return
	}

	client := NewClient(conn, user.ID.String())
	h.hub.Register(client)

	ctx, cancel := context.WithCancel(context.Background())
	go client.WriteLoop(ctx)

	// A live socket implies the user is online. The row update also
	// broadcasts the status change.
	if _, err := h.presence.SetStatus(ctx, user.ID, domain.StatusOnline); err != nil {
		h.log.Warnf("set online on connect for %s: %v", user.ID, err)
	}

	h.readLoop(ctx, client)

	cancel()
	h.hub.Unregister(client)

	offCtx, offCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer offCancel()
	if _, err := h.presence.SetStatus(offCtx, user.ID, domain.StatusOffline); err != nil {
		h.log.Warnf("set offline on disconnect for %s: %v", user.ID, err)
	}
}

func (h *Handler) readLoop(ctx context.Context, client *Client) {
	client.Conn.SetReadLimit(4096)
	_ = client.Conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	})

	for {
		_, data, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("websocket read for %s: %v", client.UserID, err)
			}
			return
		}

		var frame controlFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		h.handleFrame(ctx, client, frame)
	}
}

func (h *Handler) handleFrame(ctx context.Context, client *Client, frame controlFrame) {
	switch frame.Action {
	case actionSubscribe:
		if !h.authorizer.CanSubscribe(client.UserID, frame.Channel) {
			h.sendAck(client, eventDenied, frame.Channel)
			return
		}
		h.hub.Subscribe(client, frame.Channel)
		h.sendAck(client, eventSubscribed, frame.Channel)
	case actionUnsubscribe:
		h.hub.Unsubscribe(client, frame.Channel)
		h.sendAck(client, eventUnsubscribed, frame.Channel)
	case actionPing:
		if id, err := uuid.Parse(client.UserID); err == nil {
			h.presence.Heartbeat(ctx, id)
		}
	}
}

func (h *Handler) sendAck(client *Client, eventType, channel string) {
	data, err := json.Marshal(ackFrame{EventType: eventType, Channel: channel})
	if err != nil {
		return
	}
	client.SendMessage(data)
}
