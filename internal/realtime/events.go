package realtime

import "encoding/json"

// Server → client events.
const (
	EventConnected           = "connected"
	EventMessageNew          = "message:new"
	EventMessageDeleted      = "message:deleted"
	EventEventUpdated        = "event:updated"
	EventContributionUpdated = "contribution:updated"
	EventProfileUpdated      = "profile:updated"
	EventPresenceOnline      = "presence:user-online"
	EventPresenceOffline     = "presence:user-offline"
	EventTypingUser          = "typing:user"
	EventTypingStop          = "typing:stop"
	EventError               = "error"
)

// Client → server events.
const (
	ClientMessageSend        = "message:send"
	ClientTypingStart        = "typing:start"
	ClientTypingStop         = "typing:stop"
	ClientPresenceOnline     = "presence:online"
	ClientEventUpdate        = "event:update"
	ClientContributionUpdate = "contribution:update"
	ClientProfileUpdate      = "profile:update"
)

// echoed maps client "entity updated" events to what every connection receives.
var echoed = map[string]string{
	ClientMessageSend:        EventMessageNew,
	ClientEventUpdate:        EventEventUpdated,
	ClientContributionUpdate: EventContributionUpdated,
	ClientProfileUpdate:      EventProfileUpdated,
}

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Identity is the authenticated owner of a connection.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func encode(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
