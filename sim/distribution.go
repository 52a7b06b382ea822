package sim

import (
	"fmt"
	"math"
)

// TransitSampler draws a transit time in whole days for one transport mode.
type TransitSampler interface {
	// Sample returns a non-negative number of days.
	Sample(rng *RNG) int
}

// NormalTransitSampler draws N(mean, std) days, clamped at zero.
type NormalTransitSampler struct {
	mean, stdDev float64
	rare         rareDelay
}

func (s *NormalTransitSampler) Sample(rng *RNG) int {
	val := rng.Gauss(s.mean, s.stdDev)
	return clampDays(val + s.rare.sample(rng))
}

// LogNormalTransitSampler draws exp(N(mu, sigma)) days. Ocean lanes use it
// for their long right tail.
type LogNormalTransitSampler struct {
	mu, sigma float64
	rare      rareDelay
}

func (s *LogNormalTransitSampler) Sample(rng *RNG) int {
	val := math.Exp(s.mu + s.sigma*rng.NormFloat64())
	return clampDays(val + s.rare.sample(rng))
}

// rareDelay adds addDays with probability p. The Bernoulli draw is always
// taken so the stream advances identically whether or not the delay fires.
type rareDelay struct {
	p       float64
	addDays float64
}

func (d rareDelay) sample(rng *RNG) float64 {
	if rng.Float64() < d.p {
		return d.addDays
	}
	return 0
}

func clampDays(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Round(v))
}

// NewTransitSampler creates a sampler from a persisted lead-time model.
func NewTransitSampler(m *LeadtimeModel) (TransitSampler, error) {
	rare := rareDelay{p: m.PRareDelay, addDays: m.RareDelayAddDays}
	switch m.Family {
	case DistNormal:
		return &NormalTransitSampler{mean: m.P1, stdDev: m.P2, rare: rare}, nil
	case DistLogNormal:
		return &LogNormalTransitSampler{mu: m.P1, sigma: m.P2, rare: rare}, nil
	default:
		return nil, fmt.Errorf("unknown lead-time family %q", m.Family)
	}
}

// ProcessingLeadTime draws the supplier processing time: max(min_days, round(N(mean, std))).
func ProcessingLeadTime(rng *RNG, policy LeadTimePolicy) int {
	days := int(math.Round(rng.Gauss(policy.MeanDays, policy.StdDays)))
	if days < policy.MinDays {
		return policy.MinDays
	}
	return days
}
