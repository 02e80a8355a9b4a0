// Package events provides the live-broadcast channel: a Server-Sent Events
// hub that best-effort delivers typed events to every connected listener.
// Delivery is fire-and-forget; a broadcast with no listeners is not an error
// and a slow listener is dropped rather than waited on.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"
)

// writeTimeout bounds a single client write so a stale connection cannot
// stall a broadcast.
const writeTimeout = 2 * time.Second

// Event is the envelope every broadcast carries. Payload fields are flattened
// next to the type tag when serialized.
type Event struct {
	Type    string
	Payload map[string]interface{}
}

// MarshalJSON flattens the payload alongside the type tag.
func (e Event) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		flat[k] = v
	}
	flat["type"] = e.Type
	return json.Marshal(flat)
}

type client struct {
	id      string
	writer  http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
}

// Hub tracks connected listeners and fans broadcasts out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	nextID  int
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// ListenerCount returns the number of connected listeners.
func (h *Hub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast delivers an event to every connected listener. Failures and
// timeouts remove the listener; they never propagate to the caller.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: failed to marshal %s event: %v", event.Type, err)
		return
	}
	frame := fmt.Sprintf("data: %s\n\n", data)

	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	dead := make(chan string, len(targets))
	var wg sync.WaitGroup
	for _, c := range targets {
		select {
		case <-c.done:
			continue
		default:
		}
		wg.Add(1)
		go func(c *client) {
			defer wg.Done()
			h.write(c, frame, dead)
		}(c)
	}
	wg.Wait()
	close(dead)

	for id := range dead {
		h.remove(id)
	}
}

func (h *Hub) write(c *client, frame string, dead chan<- string) {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if _, err := c.writer.Write([]byte(frame)); err != nil {
			dead <- c.id
			return
		}
		c.flusher.Flush()
	}()

	select {
	case <-finished:
	case <-time.After(writeTimeout):
		log.Printf("events: write to listener %s timed out, dropping", c.id)
		dead <- c.id
	case <-c.done:
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	c, ok := h.clients[id]
	if ok {
		delete(h.clients, id)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
		log.Printf("events: listener %s removed (%d connected)", id, count)
	}
}

// ServeHTTP upgrades the request to an SSE stream and holds it open until the
// client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.mu.Lock()
	h.nextID++
	c := &client{
		id:      fmt.Sprintf("listener-%d", h.nextID),
		writer:  w,
		flusher: flusher,
		done:    make(chan struct{}),
	}
	h.clients[c.id] = c
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("events: listener %s connected (%d connected)", c.id, count)

	select {
	case <-r.Context().Done():
		h.remove(c.id)
	case <-c.done:
	}
}
