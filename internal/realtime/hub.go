// Package realtime fans events out to every connected websocket client.
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	connectedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "portal",
		Subsystem: "realtime",
		Name:      "connections",
		Help:      "Currently connected realtime clients",
	})
	eventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portal",
		Subsystem: "realtime",
		Name:      "events_total",
		Help:      "Realtime events fanned out, by event name",
	}, []string{"event"})
)

func init() { prometheus.MustRegister(connectedGauge, eventsTotal) }

type Options struct {
	// MessagesPerSecond and Burst bound what one connection may send.
	MessagesPerSecond float64
	Burst             int
	SendBuffer        int
}

// Hub tracks live connections and the per-user groups they belong to.
// Delivery is best effort: a client whose buffer is full is disconnected.
type Hub struct {
	log  *zap.Logger
	opts Options

	mu      sync.RWMutex
	clients map[*Client]struct{}
	groups  map[string]map[*Client]struct{}
	closed  bool
}

func NewHub(l *zap.Logger, opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}
	if opts.MessagesPerSecond <= 0 {
		opts.MessagesPerSecond = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}
	return &Hub{
		log:     l,
		opts:    opts,
		clients: map[*Client]struct{}{},
		groups:  map[string]map[*Client]struct{}{},
	}
}

// Attach registers an upgraded connection for id and serves it until it closes.
// It blocks, so call it from the upgrading handler.
func (h *Hub) Attach(conn *websocket.Conn, id Identity) {
	c := &Client{
		hub:     h,
		conn:    conn,
		user:    id,
		send:    make(chan []byte, h.opts.SendBuffer),
		limiter: rate.NewLimiter(rate.Limit(h.opts.MessagesPerSecond), h.opts.Burst),
	}
	if !h.register(c) {
		_ = conn.Close()
		return
	}
	h.log.Debug("realtime connected", zap.String("user", id.ID))
	c.queue(EventConnected, map[string]string{"userId": id.ID})

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	g, ok := h.groups[c.user.ID]
	if !ok {
		g = map[*Client]struct{}{}
		h.groups[c.user.ID] = g
	}
	g[c] = struct{}{}
	connectedGauge.Inc()
	return true
}

// unregister reports whether c was still registered.
func (h *Hub) unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	if g, ok := h.groups[c.user.ID]; ok {
		delete(g, c)
		if len(g) == 0 {
			delete(h.groups, c.user.ID)
		}
	}
	close(c.send)
	connectedGauge.Dec()
	return true
}

// Broadcast sends event to every connection.
func (h *Hub) Broadcast(event string, data any) {
	h.fanout(event, data, nil, "")
}

// BroadcastExcept sends event to every connection but except.
func (h *Hub) BroadcastExcept(except *Client, event string, data any) {
	h.fanout(event, data, except, "")
}

// SendToUser sends event to every connection of one user.
func (h *Hub) SendToUser(userID, event string, data any) {
	if userID == "" {
		return
	}
	h.fanout(event, data, nil, userID)
}

func (h *Hub) fanout(event string, data any, except *Client, userID string) {
	msg, err := encode(event, data)
	if err != nil {
		h.log.Error("realtime encode", zap.String("event", event), zap.Error(err))
		return
	}

	var slow []*Client
	h.mu.RLock()
	targets := h.clients
	if userID != "" {
		targets = h.groups[userID]
	}
	for c := range targets {
		if c == except {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	eventsTotal.WithLabelValues(event).Inc()

	for _, c := range slow {
		h.log.Warn("realtime client too slow, dropping", zap.String("user", c.user.ID))
		c.close()
	}
}

// Count returns the number of live connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.Unlock()
	for _, c := range all {
		c.close()
	}
}
