package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	user      Identity
	send      chan []byte
	limiter   *rate.Limiter
	closeOnce sync.Once
}

func (c *Client) User() Identity { return c.user }

// queue delivers an event to this client only.
func (c *Client) queue(event string, data any) {
	msg, err := encode(event, data)
	if err != nil {
		return
	}
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if _, ok := c.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { _ = c.conn.Close() })
}

func (c *Client) readPump() {
	defer func() {
		if c.hub.unregister(c) {
			c.hub.BroadcastExcept(c, EventPresenceOffline, map[string]string{"userId": c.user.ID})
		}
		c.close()
		c.hub.log.Debug("realtime disconnected", zap.String("user", c.user.ID))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("realtime read", zap.String("user", c.user.ID), zap.Error(err))
			}
			return
		}
		if !c.limiter.Allow() {
			c.queue(EventError, map[string]string{"error": "Too many events", "code": "RATE_LIMITED"})
			continue
		}
		var in Envelope
		if err := json.Unmarshal(raw, &in); err != nil || in.Event == "" {
			c.queue(EventError, map[string]string{"error": "Malformed event", "code": "BAD_REQUEST"})
			continue
		}
		c.dispatch(in)
	}
}

func (c *Client) dispatch(in Envelope) {
	h := c.hub
	if out, ok := echoed[in.Event]; ok {
		h.Broadcast(out, in.Data)
		return
	}
	switch in.Event {
	case ClientTypingStart:
		h.BroadcastExcept(c, EventTypingUser, typingPayload(c.user, in.Data))
	case ClientTypingStop:
		h.BroadcastExcept(c, EventTypingStop, map[string]string{"userId": c.user.ID})
	case ClientPresenceOnline:
		h.BroadcastExcept(c, EventPresenceOnline, map[string]string{"userId": c.user.ID})
	default:
		c.queue(EventError, map[string]string{"error": "Unknown event " + in.Event, "code": "BAD_REQUEST"})
	}
}

// typingPayload tags whatever the client sent with the sender id.
func typingPayload(u Identity, data json.RawMessage) map[string]any {
	out := map[string]any{}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	out["userId"] = u.ID
	return out
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
