// Package hub fans board updates out to websocket subscribers.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames and pings
	maxMessageSize = 4096

	sendBuffer = 16
)

// Message is the envelope pushed to subscribers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Client is one websocket subscriber of one topic.
type Client struct {
	ID    uuid.UUID
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte

	hub *Hub
}

type publication struct {
	topic   string
	payload []byte
}

// Hub keeps subscribers grouped by topic; a topic is one user's board.
type Hub struct {
	topics     map[string]map[*Client]struct{}
	publish    chan publication
	register   chan *Client
	unregister chan *Client
	counts     chan chan map[string]int
	done       chan struct{}
}

func New() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]struct{}),
		publish:    make(chan publication, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		counts:     make(chan chan map[string]int),
		done:       make(chan struct{}),
	}
}

// Subscribe registers a connection on a topic and starts its pumps. It
// returns nil and closes the connection once the hub has stopped.
func (h *Hub) Subscribe(topic string, conn *websocket.Conn) *Client {
	c := &Client{
		ID:    uuid.New(),
		Topic: topic,
		Conn:  conn,
		Send:  make(chan []byte, sendBuffer),
		hub:   h,
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return nil
	}
	go c.WritePump()
	go c.ReadPump()
	return c
}

// Publish sends a message to every subscriber of the topic. It never blocks
// on slow subscribers.
func (h *Hub) Publish(topic, msgType string, data any) {
	payload, err := json.Marshal(Message{Type: msgType, Data: data})
	if err != nil {
		log.Printf("❌ Error marshalling %s message: %v", msgType, err)
		return
	}
	select {
	case h.publish <- publication{topic: topic, payload: payload}:
	default:
		log.Printf("⚠️  Hub queue full, dropping %s message for %s", msgType, topic)
	}
}

// Subscribers returns the number of subscribers per topic.
func (h *Hub) Subscribers() map[string]int {
	reply := make(chan map[string]int, 1)
	select {
	case h.counts <- reply:
		return <-reply
	case <-h.done:
		return map[string]int{}
	}
}

// Run is the hub's main loop; it owns the topic map.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for _, clients := range h.topics {
				for c := range clients {
					close(c.Send)
				}
			}
			h.topics = make(map[string]map[*Client]struct{})
			return
		case c := <-h.register:
			if h.topics[c.Topic] == nil {
				h.topics[c.Topic] = make(map[*Client]struct{})
			}
			h.topics[c.Topic][c] = struct{}{}
		case c := <-h.unregister:
			h.remove(c)
		case p := <-h.publish:
			for c := range h.topics[p.topic] {
				select {
				case c.Send <- p.payload:
				default:
					// Send buffer full, assume the subscriber is gone
					h.remove(c)
				}
			}
		case reply := <-h.counts:
			out := make(map[string]int, len(h.topics))
			for topic, clients := range h.topics {
				out[topic] = len(clients)
			}
			reply <- out
		}
	}
}

func (h *Hub) remove(c *Client) {
	clients, ok := h.topics[c.Topic]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.Send)
	if len(clients) == 0 {
		delete(h.topics, c.Topic)
	}
}

// ReadPump drains the connection so pongs and close frames are processed.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
