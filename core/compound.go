package core

import "fmt"

// ErrInvalidCompound is returned when telemetry or a model call names a tire
// compound outside the SOFT/MEDIUM/HARD set. Callers must not silently default.
var ErrInvalidCompound = fmt.Errorf("invalid tire compound")

// Compound identifies a tire compound. The compound governs wear rate and peak
// grip; soft degrades fastest, hard slowest.
type Compound string

const (
	// CompoundSoft is the fastest, shortest-lived compound.
	CompoundSoft Compound = "SOFT"
	// CompoundMedium balances pace and stint length.
	CompoundMedium Compound = "MEDIUM"
	// CompoundHard is the slowest but most durable compound.
	CompoundHard Compound = "HARD"
)

// ParseCompound validates a raw compound string from telemetry.
func ParseCompound(s string) (Compound, error) {
	switch Compound(s) {
	case CompoundSoft, CompoundMedium, CompoundHard:
		return Compound(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCompound, s)
	}
}

// Valid reports whether the compound is one of the known set.
func (c Compound) Valid() bool {
	_, err := ParseCompound(string(c))
	return err == nil
}
