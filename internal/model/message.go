package model

import "encoding/json"

// Message types carried on the board websocket, both directions.
const (
	MessageSync   = "sync"
	MessageDraw   = "draw"
	MessageDelete = "delete"
	MessageClear  = "clear"
)

// Message is the envelope for every frame on the board channel. Payload
// decoding is deferred so a bad payload can be dropped without closing
// the connection.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type DrawPayload struct {
	Object Shape `json:"object"`
}

type DeletePayload struct {
	ObjectID string `json:"objectId"`
}

type SyncPayload struct {
	Objects []Shape `json:"objects"`
	Version int     `json:"version"`
}

// EncodeMessage marshals a payload into its envelope in one step.
func EncodeMessage(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(Message{Type: msgType, Payload: raw})
}
