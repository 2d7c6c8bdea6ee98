package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"corromics/internal/logging"
)

// Event types published by the server.
const (
	EventAnalysisStarted  = "analysis.started"
	EventAnalysisFinished = "analysis.finished"
	EventAnalysisFailed   = "analysis.failed"
)

// Event is a lifecycle notification about one analysis.
type Event struct {
	AnalysisID string                 `json:"analysis_id,omitempty"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// EventHub fans analysis events out to Server-Sent Events subscribers.
type EventHub struct {
	clients    map[chan Event]struct{}
	clientsMu  sync.RWMutex
	register   chan chan Event
	unregister chan chan Event
	broadcast  chan Event
	done       chan struct{}
	closeOnce  sync.Once
	keepAlive  time.Duration
	logger     *zap.Logger
}

// NewEventHub starts a hub. Close stops it.
func NewEventHub(logger *zap.Logger) *EventHub {
	h := &EventHub{
		clients:    make(map[chan Event]struct{}),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		broadcast:  make(chan Event, 100),
		done:       make(chan struct{}),
		keepAlive:  30 * time.Second,
		logger:     logging.OrNop(logger).Named("events"),
	}
	go h.run()
	return h
}

func (h *EventHub) run() {
	for {
		select {
		case ch := <-h.register:
			h.clientsMu.Lock()
			h.clients[ch] = struct{}{}
			n := len(h.clients)
			h.clientsMu.Unlock()
			h.logger.Debug("subscriber registered", zap.Int("subscribers", n))

		case ch := <-h.unregister:
			h.clientsMu.Lock()
			delete(h.clients, ch)
			n := len(h.clients)
			h.clientsMu.Unlock()
			h.logger.Debug("subscriber unregistered", zap.Int("subscribers", n))

		case ev := <-h.broadcast:
			h.clientsMu.RLock()
			for ch := range h.clients {
				select {
				case ch <- ev:
				default:
					h.logger.Warn("subscriber channel full, skipping event", zap.String("type", ev.Type))
				}
			}
			h.clientsMu.RUnlock()

		case <-h.done:
			return
		}
	}
}

// Publish queues ev for every subscriber. It never blocks; events are dropped
// when the queue is full or the hub is closed.
func (h *EventHub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("event queue full, dropping event", zap.String("type", ev.Type))
	}
}

// Subscribers is the number of connected clients.
func (h *EventHub) Subscribers() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close stops the hub and ends every open stream.
func (h *EventHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ServeHTTP streams events until the client disconnects or the hub closes.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := make(chan Event, 10)
	select {
	case h.register <- ch:
	case <-h.done:
		http.Error(w, "event hub closed", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case h.unregister <- ch:
		case <-h.done:
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case ev := <-ch:
			payload, err := json.Marshal(ev)
			if err != nil {
				h.logger.Error("failed to marshal event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: analysis\ndata: %s\n\n", payload)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-h.done:
			return
		}
	}
}
