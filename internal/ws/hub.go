package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/boba-pos/api/internal/events"
)

// Feeds a client can subscribe to.
const (
	FeedOrders  = "orders"
	FeedReports = "reports"
)

// ErrBacklogFull is returned by Publish when the hub is not keeping up.
var ErrBacklogFull = errors.New("websocket broadcast backlog full")

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// feedEvent is an internal struct for routing events to a feed
type feedEvent struct {
	Feed  string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by feed
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *feedEvent

	// Closed when Run returns
	done chan struct{}

	// Mutex for thread-safe room access
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *feedEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop until ctx is cancelled.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.feed] == nil {
				h.rooms[client.feed] = make(map[*Client]bool)
			}
			h.rooms[client.feed][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.Feed] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, drop it
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Register adds a client to its feed. It reports false once the hub has
// shut down.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister drops a client. It returns immediately after shutdown, when
// closeAll has already released every client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// remove must be called with mu held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.feed]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.feed)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.remove(client)
		}
	}
}

// Broadcast queues an event for every client on a feed without blocking.
func (h *Hub) Broadcast(feed string, event Event) error {
	select {
	case h.broadcast <- &feedEvent{Feed: feed, Event: event}:
		return nil
	default:
		return ErrBacklogFull
	}
}

// Publish implements events.Publisher. Order events go to the public order
// feed; everything else (reports, inventory) to the manager feed.
func (h *Hub) Publish(ctx context.Context, e events.Event) error {
	feed := FeedReports
	if strings.HasPrefix(e.Type, "order.") {
		feed = FeedOrders
	}
	return h.Broadcast(feed, Event{Type: e.Type, Payload: e.Payload})
}
