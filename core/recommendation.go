package core

import "github.com/google/uuid"

// Consensus states whether the monitoring signals agreed about the right action.
type Consensus string

const (
	// ConsensusUnanimous means every firing signal pointed the same way.
	ConsensusUnanimous Consensus = "UNANIMOUS"
	// ConsensusConflicted means signals pulled in opposing directions.
	ConsensusConflicted Consensus = "CONFLICTED"
	// ConsensusClear means a single dominant signal, or a quiet lap.
	ConsensusClear Consensus = "CLEAR"
)

// RecommendationType is the strategic action a recommendation calls for.
type RecommendationType string

const (
	RecommendPitNow   RecommendationType = "PIT_NOW"
	RecommendPitSoon  RecommendationType = "PIT_SOON"
	RecommendStayOut  RecommendationType = "STAY_OUT"
	RecommendPush     RecommendationType = "PUSH"
	RecommendConserve RecommendationType = "CONSERVE"
	RecommendDefend   RecommendationType = "DEFEND"
)

// Source categorizes how a recommendation was produced so downstream consumers
// can distinguish degraded output.
type Source string

const (
	// SourceLive recommendations came from the external reasoning service.
	SourceLive Source = "LIVE"
	// SourceCached recommendations are reused from a previous lap.
	SourceCached Source = "CACHED"
	// SourceFallback recommendations were synthesized locally.
	SourceFallback Source = "FALLBACK"
)

// PitWindow is the inclusive lap range considered optimal for a pit stop.
type PitWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Recommendation is the strategic output of one coordinator invocation.
// At most one recommendation is current at any time; it is overwritten, never
// merged, and is always attributable to exactly one lap and one source.
type Recommendation struct {
	ID                 string             `json:"id"`
	Consensus          Consensus          `json:"consensus"`
	Type               RecommendationType `json:"recommendation_type"`
	Urgency            Urgency            `json:"urgency"`
	Confidence         float64            `json:"confidence"`
	PitWindow          *PitWindow         `json:"pit_window,omitempty"`
	TargetCompound     *Compound          `json:"target_compound,omitempty"`
	DriverInstruction  string             `json:"driver_instruction"`
	PitCrewInstruction string             `json:"pit_crew_instruction"`
	Reasoning          string             `json:"reasoning"`
	KeyEvents          []string           `json:"key_events,omitempty"`
	ProducedAtLap      int                `json:"produced_at_lap"`
	Source             Source             `json:"source"`
}

// NewRecommendationID returns a fresh recommendation identifier.
func NewRecommendationID() string { return uuid.NewString() }
