package stream

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"gearplanner/internal/gear"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	EventListsLoaded = "lists.loaded"
	EventListCreated = "list.created"
	EventListUpdated = "list.updated"
	EventListDeleted = "list.deleted"
)

// Event tells a user's other tabs that their cached lists changed.
type Event struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	ListID string         `json:"listId,omitempty"`
	List   *gear.GearList `json:"list,omitempty"`
	At     time.Time      `json:"at"`
}

// Hub fans events out to every websocket a user has open. With redis it also
// reaches sockets held by other BFF instances.
type Hub struct {
	redis    *redis.Client
	log      *zap.SugaredLogger
	instance string
	clients  map[string]map[*Client]struct{}
	mu       sync.RWMutex
	cancel   context.CancelFunc
}

type Client struct {
	UserID string
	Send   chan []byte
}

type envelope struct {
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

func NewHub(redisClient *redis.Client, log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &Hub{
		redis:    redisClient,
		log:      log,
		instance: uuid.NewString(),
		clients:  map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		pubsub := redisClient.PSubscribe(ctx, redisPattern)
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Warnw("redis subscribe failed, events stay local to this instance", "error", err)
		}
		go h.subscribeRedis(ctx, pubsub)
	}
	return h
}

// Close stops the redis subscription.
func (h *Hub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *Hub) Register(userID string) *Client {
	client := &Client{
		UserID: userID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = map[*Client]struct{}{}
	}
	h.clients[userID][client] = struct{}{}
	return client
}

// Unregister is safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := userClients[client]; !ok {
		return
	}
	delete(userClients, client)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
}

// Publish stamps the event and broadcasts it to the user's sockets.
func (h *Hub) Publish(userID string, event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("encoding stream event failed", "user_id", userID, "type", event.Type, "error", err)
		return
	}
	h.Broadcast(userID, payload)
}

// Broadcast delivers payload to the user's local sockets and, with redis, to
// other instances. Only JSON payloads cross instances; anything else stays
// local and is logged.
func (h *Hub) Broadcast(userID string, payload []byte) {
	h.deliver(userID, payload)

	if h.redis == nil {
		return
	}
	msg, err := json.Marshal(envelope{Origin: h.instance, Payload: payload})
	if err != nil {
		h.log.Warnw("stream payload not forwarded to other instances", "user_id", userID, "error", err)
		return
	}
	if err := h.redis.Publish(context.Background(), redisChannel(userID), msg).Err(); err != nil {
		h.log.Warnw("redis publish failed", "user_id", userID, "error", err)
	}
}

func (h *Hub) deliver(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.Send <- payload:
		default:
			h.log.Warnw("dropping stream event for slow client", "user_id", userID)
		}
	}
}

func (h *Hub) subscribeRedis(ctx context.Context, pubsub *redis.PubSub) {
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
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.log.Warnw("ignoring malformed stream message", "channel", msg.Channel, "error", err)
				continue
			}
			if env.Origin == h.instance {
				continue
			}
			h.deliver(userIDFromChannel(msg.Channel), env.Payload)
		}
	}
}

const (
	channelPrefix = "gearlists:"
	channelSuffix = ":events"
	redisPattern  = channelPrefix + "*" + channelSuffix
)

func redisChannel(userID string) string {
	return channelPrefix + userID + channelSuffix
}

// gearlists:{user}:events
func userIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) ||
		!strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
