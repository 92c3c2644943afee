package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages exchanged over a game socket
type MessageType string

const (
	// client -> server
	MessageTypeMove     MessageType = "move"
	MessageTypeDrawback MessageType = "drawback"
	MessageTypeUndo     MessageType = "undo"
	MessageTypeRedo     MessageType = "redo"
	MessageTypeReset    MessageType = "reset"

	// server -> client
	MessageTypeGameState MessageType = "gameState"
	MessageTypeGameOver  MessageType = "gameOver"
	MessageTypeError     MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DrawbackPayload assigns a drawback to one side.
type DrawbackPayload struct {
	Color    string `json:"color"`
	Drawback string `json:"drawback"`
}

// ErrorPayload carries a human readable failure back to the sender.
type ErrorPayload struct {
	Error string `json:"error"`
}
