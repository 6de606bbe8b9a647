package types

import "encoding/json"

type EventType string

const (
	// EventWildcard matches every event type when used in a subscription.
	EventWildcard EventType = "*"

	EventSessionCreated EventType = "session.created"
	EventSessionUpdated EventType = "session.updated"
	EventSessionDeleted EventType = "session.deleted"
	EventSessionIdle    EventType = "session.idle"
	EventSessionStatus  EventType = "session.status"
	EventSessionError   EventType = "session.error"

	EventMessageUpdated     EventType = "message.updated"
	EventMessagePartUpdated EventType = "message.part.updated"

	EventPermissionRequest EventType = "permission.request"
)

// StreamEvent is one decoded frame from the server event stream. Properties
// carries the type-specific payload; it is decoded on demand by whichever
// subscriber cares about the concrete shape.
type StreamEvent struct {
	Type       EventType       `json:"type"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// Known reports whether the event type belongs to the closed set this client
// understands. Unknown events still flow to wildcard subscribers; only frames
// with no type at all are dropped at the transport boundary.
func (t EventType) Known() bool {
	switch t {
	case EventSessionCreated, EventSessionUpdated, EventSessionDeleted,
		EventSessionIdle, EventSessionStatus, EventSessionError,
		EventMessageUpdated, EventMessagePartUpdated,
		EventPermissionRequest:
		return true
	}
	return false
}

type SessionEventPayload struct {
	Info Session `json:"info"`
}

type SessionStatusPayload struct {
	SessionID string        `json:"sessionID"`
	Status    SessionStatus `json:"status"`
}

type MessageEventPayload struct {
	Info Message `json:"info"`
}

// DecodeProperties unmarshals the event payload into out.
func (e StreamEvent) DecodeProperties(out any) error {
	if len(e.Properties) == 0 {
		return nil
	}
	return json.Unmarshal(e.Properties, out)
}
