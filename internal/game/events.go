package game

import "time"

// EventType names an entry in a hand's event log.
type EventType string

const (
	EventHandStart      EventType = "hand_start"
	EventPlayerAction   EventType = "player_action"
	EventCommunityCards EventType = "community_cards"
	EventShowdown       EventType = "showdown"
	EventHandComplete   EventType = "hand_complete"
	EventHandEnd        EventType = "hand_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// RunoutPhase tags the community_cards event for an all-in runout.
const RunoutPhase = "RUNOUT"

// Event is one entry of a hand's append-only log. Sequence numbers start
// at 1 for each hand and have no gaps, so downstream consumers can detect
// lost or duplicated deliveries.
type Event struct {
	HandID    string         `json:"hand_id"`
	Sequence  int            `json:"sequence"`
	Type      EventType      `json:"type"`
	AgentID   string         `json:"agent_id,omitempty"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventSubscriber receives events as the engine records them. OnEvent runs
// synchronously on the engine's goroutine and must not block.
type EventSubscriber interface {
	OnEvent(tableID string, e Event)
}

// EventSubscriberFunc adapts a function to EventSubscriber.
type EventSubscriberFunc func(tableID string, e Event)

func (f EventSubscriberFunc) OnEvent(tableID string, e Event) { f(tableID, e) }
