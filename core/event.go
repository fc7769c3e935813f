package core

import (
	"time"

	"github.com/google/uuid"
)

// EventType names the condition a monitor agent detected.
type EventType string

// Event types emitted by the tire monitor.
const (
	EventPitStop           EventType = "PIT_STOP"
	EventTireCliff         EventType = "TIRE_CLIFF"
	EventVeryOldTires      EventType = "VERY_OLD_TIRES"
	EventOldTires          EventType = "OLD_TIRES"
	EventPeriodicTireCheck EventType = "PERIODIC_TIRE_CHECK"
)

// Event types emitted by the pace monitor.
const (
	EventPaceCollapse            EventType = "PACE_COLLAPSE"
	EventDegradationAccelerating EventType = "DEGRADATION_ACCELERATING"
	EventPaceUpdate              EventType = "PACE_UPDATE"
)

// Event types emitted by the position monitor.
const (
	EventPositionChange  EventType = "POSITION_CHANGE"
	EventProximityThreat EventType = "PROXIMITY_THREAT"
	EventCloseRacing     EventType = "CLOSE_RACING"
	EventGapClosing      EventType = "GAP_CLOSING"
	EventPositionUpdate  EventType = "POSITION_UPDATE"
)

// Event types emitted by the competitor monitor.
const (
	EventCompetitorPit           EventType = "COMPETITOR_PIT"
	EventCompetitorFaster        EventType = "COMPETITOR_FASTER"
	EventPeriodicCompetitorCheck EventType = "PERIODIC_COMPETITOR_CHECK"
)

// Event is a condition detected by a monitor agent on one lap. Events are the
// only communication between agents and the arbiter; they are not persisted
// beyond the lap that produced them except inside the recommendation they
// triggered. Treat as immutable after emission.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Urgency   Urgency        `json:"urgency"`
	Lap       int            `json:"lap"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	CallAI    bool           `json:"call_ai"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent constructs an event for the given lap with a fresh ID.
func NewEvent(lap int, typ EventType, urgency Urgency, callAI bool, message string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Urgency:   urgency,
		Lap:       lap,
		Message:   message,
		Payload:   payload,
		CallAI:    callAI,
		Timestamp: time.Now().UTC(),
	}
}

// ArbitrationDecision is the arbiter's verdict for one lap: whether the
// reasoning service should be invoked, why, and the events sorted most urgent
// first. It is derived purely from the lap's event set.
type ArbitrationDecision struct {
	Invoke bool    `json:"invoke"`
	Reason string  `json:"reason"`
	Events []Event `json:"events"`
}
