package chat

import (
	"encoding/json"

	"pairchat/internal/app/store"
)

// Event names the frame types exchanged over the WebSocket connection.
type Event string

const (
	// EventRegister is sent by the client to join a user identity's delivery group.
	EventRegister Event = "register"

	// EventMessage is pushed by the server when a new message is committed in a
	// conversation the registered user participates in.
	EventMessage Event = "message"
)

// InboundFrame is a frame received from the client.
type InboundFrame struct {
	Event  Event `json:"event"`
	UserID int64 `json:"user_id,omitempty"`
}

// OutboundFrame is a frame pushed to the client.
type OutboundFrame struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

// EncodeMessageFrame marshals a hydrated message into the push frame delivered
// to every live session of both participants. The payload is encoded once and
// shared across all sessions.
func EncodeMessageFrame(msg store.Message) ([]byte, error) {
	return json.Marshal(OutboundFrame{
		Event: EventMessage,
		Data:  msg,
	})
}
