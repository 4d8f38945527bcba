package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventAction says what happened to an item.
type EventAction string

const (
	ActionCreated EventAction = "created"
	ActionUpdated EventAction = "updated"
	ActionDeleted EventAction = "deleted"
)

// ItemEvent is a lightweight change notification. It carries only the id;
// consumers read the current state from storage.
type ItemEvent struct {
	ID        string      `json:"id"`
	Action    EventAction `json:"action"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewItemEvent stamps an event with the current time.
func NewItemEvent(id string, action EventAction) *ItemEvent {
	return &ItemEvent{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *ItemEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ItemEventFromJSON decodes and checks an event body.
func ItemEventFromJSON(data []byte) (*ItemEvent, error) {
	var e ItemEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown item event action %q", e.Action)
	}
	if e.ID == "" {
		return nil, fmt.Errorf("item event without id")
	}
	return &e, nil
}
