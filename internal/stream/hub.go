// Package stream pushes activity events (new follower, comment, like) to the
// websocket connections of the user they concern. With Redis configured every
// instance subscribes to the same channels, so an event reaches the user
// whichever instance holds the socket.
package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"backend-friendbook/internal/logger"

	"github.com/redis/go-redis/v9"
)

const (
	channelPrefix  = "activity:"
	channelSuffix  = ":broadcast"
	channelPattern = channelPrefix + "*" + channelSuffix
	sendBuffer     = 64
)

type EventType string

const (
	EventFollow  EventType = "follow"
	EventComment EventType = "comment"
	EventLike    EventType = "like"
)

type Event struct {
	Type      EventType `json:"type"`
	ActorID   string    `json:"actorId"`
	PostID    string    `json:"postId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher delivers an event to one user. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, userID string, ev Event)
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) {}

type Hub struct {
	redis   *redis.Client
	log     *logger.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
	cancel  context.CancelFunc
}

var _ Publisher = (*Hub)(nil)

type Client struct {
	UserID string
	Send   chan []byte
}

func NewHub(redisClient *redis.Client, log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		log:     log,
		clients: map[string]map[*Client]struct{}{},
		cancel:  cancel,
	}

	if redisClient != nil {
		pubsub := redisClient.PSubscribe(ctx, channelPattern)
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Warn("activity stream falls back to local delivery", "error", err)
			_ = pubsub.Close()
		} else {
			h.redis = redisClient
			go h.forward(ctx, pubsub)
		}
	}
	return h
}

// Close stops the Redis subscription.
func (h *Hub) Close() {
	h.cancel()
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if userClients, ok := h.clients[client.UserID]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	close(client.Send)
}

func (h *Hub) Publish(ctx context.Context, userID string, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encode activity event", "error", err)
		return
	}
	h.Broadcast(ctx, userID, payload)
}

// Broadcast sends payload to every socket of userID. Through Redis the local
// sockets are reached by the subscription, so they are only written directly
// when there is no Redis or publishing failed.
func (h *Hub) Broadcast(ctx context.Context, userID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(ctx, redisChannel(userID), payload).Err()
		if err == nil {
			return
		}
		h.log.Warn("redis publish failed", "user_id", userID, "error", err)
	}
	h.deliver(userID, payload)
}

func (h *Hub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) forward(ctx context.Context, pubsub *redis.PubSub) {
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if userID := userIDFromChannel(msg.Channel); userID != "" {
				h.deliver(userID, []byte(msg.Payload))
			}
		}
	}
}

func redisChannel(userID string) string {
	return channelPrefix + userID + channelSuffix
}

func userIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
