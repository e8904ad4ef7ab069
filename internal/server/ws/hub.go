// Package ws pushes realtime events to the UI shell over websockets.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/polkiloo/courieragent/internal/metrics"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 8192
	sendBuffer     = 64
)

// TopicFeed carries driver feed events and popups.
const TopicFeed = "feed"

// OrderTopic names the stream of one order session.
func OrderTopic(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// MessageHandler handles a frame received from a client.
type MessageHandler func(client *Client, messageType string, data json.RawMessage) error

// Client is one websocket connection subscribed to a topic.
type Client struct {
	ID     string
	Topic  string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	logger *slog.Logger
}

type outbound struct {
	topic   string
	payload []byte
}

// Hub tracks connected clients and fans messages out by topic.
type Hub struct {
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[string]*Client
	handler MessageHandler
	stopped bool

	unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
}

func NewHub(m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The local API only listens for the UI shell; CORS is enforced by
			// the router.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		metrics:    m,
		logger:     logger,
		clients:    make(map[string]*Client),
		unregister: make(chan *Client, 16),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
	}
}

// SetMessageHandler installs the handler for client frames.
func (h *Hub) SetMessageHandler(handler MessageHandler) {
	h.mu.Lock()
	h.handler = handler
	h.mu.Unlock()
}

// Run dispatches unregistrations and broadcasts until ctx is done. All
// clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			h.stopped = true
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
				h.gauge(-1)
			}
			h.mu.Unlock()
			h.logger.Info("websocket hub stopped")
			return

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				close(c.send)
				h.gauge(-1)
			}
			h.mu.Unlock()
			h.logger.Debug("stream client unregistered", slog.String("client", c.ID))

		case msg := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				if c.Topic != msg.topic {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					close(c.send)
					delete(h.clients, id)
					h.gauge(-1)
					h.logger.Warn("slow stream client dropped", slog.String("client", id))
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends a typed message to every client of topic.
func (h *Hub) Publish(topic, msgType string, data any) error {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msgType, err)
	}
	if h.metrics != nil {
		h.metrics.TrackingEvents.WithLabelValues(streamLabel(topic), msgType).Inc()
	}
	select {
	case h.broadcast <- outbound{topic: topic, payload: payload}:
	case <-h.done:
	default:
		h.logger.Warn("broadcast dropped", slog.String("topic", topic), slog.String("type", msgType))
	}
	return nil
}

// ClientCount returns the number of clients subscribed to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients {
		if c.Topic == topic {
			n++
		}
	}
	return n
}

// ServeWS upgrades the request and subscribes the connection to topic. The
// client is registered on return and may be used to send an initial frame.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, topic string) (*Client, error) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade websocket: %w", err)
	}

	c := &Client{
		ID:     uuid.NewString(),
		Topic:  topic,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    h,
		logger: h.logger,
	}

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		_ = conn.Close()
		return nil, fmt.Errorf("websocket hub stopped")
	}
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.gauge(1)
	h.logger.Debug("stream client registered", slog.String("client", c.ID), slog.String("topic", topic))

	go c.writePump()
	go c.readPump()
	return c, nil
}

// Send queues a typed message for this client only.
func (c *Client) Send(msgType string, data any) error {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		return fmt.Errorf("encode %s message: %w", msgType, err)
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c.ID]; !ok {
		return fmt.Errorf("client %s is not connected", c.ID)
	}
	select {
	case c.send <- payload:
		return nil
	default:
		return fmt.Errorf("client %s send buffer full", c.ID)
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("stream read failed", slog.String("client", c.ID), slog.String("error", err.Error()))
			}
			return
		}

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data,omitempty"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("malformed stream frame", slog.String("client", c.ID), slog.String("error", err.Error()))
			continue
		}

		c.hub.mu.RLock()
		handler := c.hub.handler
		c.hub.mu.RUnlock()
		if handler == nil {
			continue
		}
		if err := handler(c, msg.Type, msg.Data); err != nil {
			c.logger.Warn("stream frame rejected", slog.String("client", c.ID), slog.String("type", msg.Type), slog.String("error", err.Error()))
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) gauge(delta float64) {
	if h.metrics != nil {
		h.metrics.StreamClients.Add(delta)
	}
}

func streamLabel(topic string) string {
	if i := strings.IndexByte(topic, ':'); i >= 0 {
		return topic[:i]
	}
	return topic
}
