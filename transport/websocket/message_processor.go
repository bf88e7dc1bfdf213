package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/rhythmduel-backend/internal/usecase"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// encodeMessage - builds the wire form of an outbound event. A nil payload is omitted.
func encodeMessage(action usecase.Action, payload any) ([]byte, error) {
	msg := Message{Action: string(action)}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		msg.Payload = raw
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

// decodeMessage - reads an inbound frame into an event for the matchmaker.
func decodeMessage(data []byte) (usecase.Event, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return usecase.Event{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if msg.Action == "" {
		return usecase.Event{}, errEmptyAction
	}

	return usecase.Event{Action: usecase.Action(msg.Action), Payload: msg.Payload}, nil
}
