// Package preview serves the rendered site locally with SSE live reload.
package preview

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/refdocs/internal/metrics"
)

// Hub manages SSE clients for content-hash broadcasts. Each successful
// rebuild broadcasts the new hash; clients reload when it changes.
type Hub struct {
	recorder  metrics.Recorder
	heartbeat time.Duration

	mu       sync.Mutex
	nextID   int
	clients  map[int]*hubClient
	closed   bool
	lastHash string
}

type hubClient struct {
	id   int
	ch   chan string
	done chan struct{}
}

// NewHub creates a Hub. A nil recorder falls back to the noop recorder.
func NewHub(rec metrics.Recorder) *Hub {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Hub{
		recorder:  rec,
		heartbeat: 30 * time.Second,
		clients:   map[int]*hubClient{},
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP implements the SSE endpoint. The connection stays open until
// the client disconnects or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "live reload shutting down", http.StatusServiceUnavailable)
		return
	}
	client := &hubClient{id: h.nextID, ch: make(chan string, 8), done: make(chan struct{})}
	h.nextID++
	h.clients[client.id] = client
	current := h.lastHash
	h.recorder.SetLiveReloadClients(len(h.clients))
	h.mu.Unlock()
	defer h.removeClient(client.id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if current != "" {
		if _, err := fmt.Fprintf(w, "data: {\"hash\":%q}\n\n", current); err != nil {
			return
		}
	}
	flusher.Flush()

	hb := time.NewTicker(h.heartbeat)
	defer hb.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-hb.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case hash := <-client.ch:
			if _, err := fmt.Fprintf(w, "data: {\"hash\":%q}\n\n", hash); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (h *Hub) removeClient(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
		h.recorder.SetLiveReloadClients(len(h.clients))
	}
}

// Broadcast sends a new content hash to all clients. An unchanged or empty
// hash is a no-op. Clients whose channels are full are dropped; their next
// reconnect replays the latest hash anyway.
func (h *Hub) Broadcast(hash string) {
	h.mu.Lock()
	if h.closed || hash == "" || hash == h.lastHash {
		h.mu.Unlock()
		return
	}
	h.lastHash = hash
	snapshot := make([]*hubClient, 0, len(h.clients))
	for _, c := range h.clients {
		snapshot = append(snapshot, c)
	}
	h.mu.Unlock()

	dropped := 0
	for _, c := range snapshot {
		select {
		case c.ch <- hash:
		default:
			dropped++
			h.removeClient(c.id)
		}
	}
	slog.Debug("live reload broadcast",
		slog.String("hash", hash),
		slog.Int("clients", len(snapshot)),
		slog.Int("dropped", dropped))
}

// Shutdown disconnects all clients and rejects future connections.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := h.clients
	h.clients = map[int]*hubClient{}
	h.recorder.SetLiveReloadClients(0)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.done)
	}
}
