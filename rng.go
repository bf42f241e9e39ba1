package contagiongo

import (
	"math"

	rv "github.com/kentwait/randomvariate"
)

// RandomSource is the only randomness surface the kernel and concrete events
// are allowed to depend on. Centralizing it here keeps draw order
// reproducible in sequential mode (see SPEC_FULL.md §5).
type RandomSource interface {
	// DrawExp returns a sample from an exponential distribution with the
	// given rate. Used to draw an event's internal target tau.
	DrawExp(rate float64) float64
	// DrawUniform01 returns a sample in [0, 1).
	DrawUniform01() float64
	// DrawPoisson returns a Poisson(lambda) sample, used by concrete events
	// that need integer counts (e.g. partner counts, seed batch sizes).
	DrawPoisson(lambda float64) int
}

// randomvariateSource adapts github.com/kentwait/randomvariate to the
// RandomSource contract. rv does not expose Exponential or Uniform01
// directly alongside its Poisson/Binomial/Multinomial family, so both are
// synthesized here from rv.Uniform (documented in DESIGN.md).
type randomvariateSource struct{}

// NewRandomSource returns the default RandomSource backed by randomvariate.
func NewRandomSource() RandomSource {
	return randomvariateSource{}
}

func (randomvariateSource) DrawExp(rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	u := rv.Uniform(0, 1)
	// Inverse-CDF sampling: -ln(1-U)/rate, with 1-U kept away from 0.
	for u >= 1 {
		u = rv.Uniform(0, 1)
	}
	return -math.Log(1-u) / rate
}

func (randomvariateSource) DrawUniform01() float64 {
	return rv.Uniform(0, 1)
}

func (randomvariateSource) DrawPoisson(lambda float64) int {
	return int(rv.Poisson(lambda))
}
