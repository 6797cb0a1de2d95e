// Package protocol defines the wire protocol between the browser client and
// the live router.
package protocol

import (
	"time"
)

// Lifecycle events.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventHeartbeat = "heartbeat"
	EventReply     = "phx_reply"
	EventError     = "phx_error"
	EventDiff      = "diff"
	EventCommands  = "commands"
)

// Navigation events sent by the client.
const (
	EventScroll      = "scroll"
	EventResize      = "resize"
	EventNavigate    = "navigate"
	EventToggleMenu  = "toggle_menu"
	EventDismissMenu = "dismiss_menu"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message is one frame exchanged between client and server.
type Message struct {
	// Ref correlates a request with its reply.
	Ref string `json:"ref,omitempty" msgpack:"ref,omitempty"`

	// JoinRef is the ref of the join that opened the channel.
	JoinRef string `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`

	// Topic is the channel, "lv:<socket-id>" for live sessions.
	Topic string `json:"topic" msgpack:"topic"`

	// Event is the event name.
	Event string `json:"event" msgpack:"event"`

	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`

	// Timestamp in Unix milliseconds.
	Timestamp int64 `json:"ts,omitempty" msgpack:"ts,omitempty"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(topic, event string) *Message {
	return &Message{
		Topic:     topic,
		Event:     event,
		Payload:   make(map[string]any),
		Timestamp: time.Now().UnixMilli(),
	}
}

// WithRef adds a reference ID to the message.
func (m *Message) WithRef(ref string) *Message {
	m.Ref = ref
	return m
}

// WithPayload sets the message payload.
func (m *Message) WithPayload(payload map[string]any) *Message {
	m.Payload = payload
	return m
}

// GetPayloadString retrieves a string value from the payload.
func (m *Message) GetPayloadString(key string) string {
	if m.Payload == nil {
		return ""
	}
	if v, ok := m.Payload[key].(string); ok {
		return v
	}
	return ""
}

// GetPayloadFloat retrieves a numeric value from the payload.
// ok is false when the key is missing or not a number.
func (m *Message) GetPayloadFloat(key string) (float64, bool) {
	if m.Payload == nil {
		return 0, false
	}
	return AsFloat(m.Payload[key])
}

// GetPayloadMap retrieves a nested object from the payload.
func (m *Message) GetPayloadMap(key string) map[string]any {
	if m.Payload == nil {
		return nil
	}
	v, _ := m.Payload[key].(map[string]any)
	return v
}

// AsFloat converts any decoded number to float64. JSON decodes numbers as
// float64; MessagePack keeps the narrowest integer type.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// ReplyMessage creates a reply message.
func ReplyMessage(ref, topic, status string, response map[string]any) *Message {
	return NewMessage(topic, EventReply).
		WithRef(ref).
		WithPayload(map[string]any{
			"status":   status,
			"response": response,
		})
}

// OkReply creates a successful reply message.
func OkReply(ref, topic string, response map[string]any) *Message {
	return ReplyMessage(ref, topic, StatusOK, response)
}

// ErrorReply creates an error reply message.
func ErrorReply(ref, topic, reason string) *Message {
	return ReplyMessage(ref, topic, StatusError, map[string]any{"reason": reason})
}

// CommandsMessage carries an ordered list of client operations.
func CommandsMessage(topic string, ops any) *Message {
	return NewMessage(topic, EventCommands).WithPayload(map[string]any{"ops": ops})
}

// Status returns the status of a reply, or "" for other messages.
func (m *Message) Status() string {
	if m.Event != EventReply {
		return ""
	}
	return m.GetPayloadString("status")
}

// Response returns the response object of a reply.
func (m *Message) Response() map[string]any {
	return m.GetPayloadMap("response")
}
