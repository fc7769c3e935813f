package reasoning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SystemPrompt frames the model as a race engineer synthesizing the four
// monitor agents' pre-processed findings. Shared by all providers.
const SystemPrompt = `You are a race strategy coordinator. Four monitoring agents have already
pre-processed the raw telemetry for you: tire, pace, position and competitor.
You are called only when they detect events that justify a strategy refresh.

Respond like a race engineer: concise, tactical, data-driven. Always answer
with a single JSON object, no prose outside it, in this shape:

{
  "consensus": "UNANIMOUS" | "CONFLICTED" | "CLEAR",
  "recommendation_type": "PIT_NOW" | "PIT_SOON" | "STAY_OUT" | "PUSH" | "CONSERVE" | "DEFEND",
  "pit_window": [start_lap, end_lap] or null,
  "target_compound": "SOFT" | "MEDIUM" | "HARD" or null,
  "driver_instruction": "1-2 sentences for the driver over team radio",
  "pit_crew_instruction": "1-2 sentences for the pit crew",
  "reasoning": "2-3 sentences explaining the strategy",
  "urgency": "LOW" | "MEDIUM" | "HIGH" | "CRITICAL",
  "confidence": 0.0-1.0,
  "key_events": ["the events driving this decision"]
}`

// UserPrompt renders the request as the task message for the model.
func UserPrompt(req Request) (string, error) {
	payload, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Lap %d of %d, driver %s.\n\n", req.Lap, req.TotalLaps, req.Driver)
	b.WriteString("Current race situation (events sorted most urgent first):\n\n")
	b.Write(payload)
	b.WriteString("\n\nProvide your strategic recommendation as JSON.")
	return b.String(), nil
}

// ParseVerdict decodes a model reply into a Verdict. Markdown code fences are
// stripped first; anything that then fails to decode or validate is an error
// the coordinator treats like a transient service failure.
func ParseVerdict(raw string) (*Verdict, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var v Verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, Transient(fmt.Errorf("decode verdict: %w", err))
	}
	if err := v.Validate(); err != nil {
		return nil, Transient(err)
	}
	return &v, nil
}

// Validate rejects verdicts outside the response contract.
func (v *Verdict) Validate() error {
	switch v.Consensus {
	case "UNANIMOUS", "CONFLICTED", "CLEAR":
	default:
		return fmt.Errorf("verdict: bad consensus %q", v.Consensus)
	}
	switch v.RecommendationType {
	case "PIT_NOW", "PIT_SOON", "STAY_OUT", "PUSH", "CONSERVE", "DEFEND":
	default:
		return fmt.Errorf("verdict: bad recommendation_type %q", v.RecommendationType)
	}
	switch v.Urgency {
	case "LOW", "MEDIUM", "HIGH", "CRITICAL":
	default:
		return fmt.Errorf("verdict: bad urgency %q", v.Urgency)
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("verdict: confidence %.2f outside [0,1]", v.Confidence)
	}
	if len(v.PitWindow) != 0 && len(v.PitWindow) != 2 {
		return fmt.Errorf("verdict: pit_window must have 2 laps, got %d", len(v.PitWindow))
	}
	if v.TargetCompound != nil && !v.TargetCompound.Valid() {
		return fmt.Errorf("verdict: bad target_compound %q", string(*v.TargetCompound))
	}
	return nil
}
