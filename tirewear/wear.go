// Package tirewear models tire degradation as a simplified empirical curve:
// a per-compound quadratic in tire age scaled linearly by track temperature.
// It also carries the stint-time and pit-window arithmetic built on top of
// that curve. Everything here is deterministic and stateless apart from the
// race parameters held by Model.
package tirewear

import (
	"fmt"

	"github.com/racelab/pitwall/core"
)

// ReferenceTempC is the track temperature at which the coefficients were fit.
const ReferenceTempC = 30.0

// coefficients hold the quadratic degradation fit for one compound:
// degradation(age) = a·age² + b·age + c seconds, at the reference temperature.
type coefficients struct {
	a, b, c float64
}

// Empirical fits. Soft degrades fastest, hard slowest; the soft curve crosses
// the 2.0 s cliff threshold around age 19, medium around 24, hard around 34.
var compoundCoefficients = map[core.Compound]coefficients{
	core.CompoundSoft:   {a: 0.0050, b: 0.020, c: 0.0},
	core.CompoundMedium: {a: 0.0030, b: 0.015, c: 0.0},
	core.CompoundHard:   {a: 0.0015, b: 0.010, c: 0.0},
}

// Degradation returns the lap-time loss in seconds for a tire of the given
// compound and age at the given track temperature. Age zero is a fresh tire
// with only the constant term. An unknown compound is an error, never a
// silent default.
func Degradation(compound core.Compound, age int, trackTempC float64) (float64, error) {
	cf, ok := compoundCoefficients[compound]
	if !ok {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidCompound, string(compound))
	}
	if age < 0 {
		return 0, fmt.Errorf("tire age must be >= 0, got %d", age)
	}

	base := cf.a*float64(age)*float64(age) + cf.b*float64(age) + cf.c
	tempScale := 1.0 + (trackTempC-ReferenceTempC)/100.0
	return base * tempScale, nil
}

// PredictCliffLap returns the smallest tire age at which degradation exceeds
// threshold at the reference temperature, scanning ages 1..50. If the curve
// never crosses the threshold it returns 50.
func PredictCliffLap(compound core.Compound, threshold float64) (int, error) {
	for age := 1; age <= 50; age++ {
		deg, err := Degradation(compound, age, ReferenceTempC)
		if err != nil {
			return 0, err
		}
		if deg > threshold {
			return age, nil
		}
	}
	return 50, nil
}
