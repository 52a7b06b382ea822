package sim

import (
	"math"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce identical worlds and histories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === countingSource ===

// countingSource counts every step taken on the underlying source so that the
// stream position can be checkpointed and replayed.
type countingSource struct {
	seed  int64
	inner rand.Source64
	draws uint64
}

func newCountingSource(seed int64) *countingSource {
	return &countingSource{seed: seed, inner: rand.NewSource(seed).(rand.Source64)}
}

func (s *countingSource) Int63() int64 {
	s.draws++
	return s.inner.Int63()
}

func (s *countingSource) Uint64() uint64 {
	s.draws++
	return s.inner.Uint64()
}

func (s *countingSource) Seed(seed int64) {
	s.seed = seed
	s.draws = 0
	s.inner.Seed(seed)
}

// === RNG ===

// Checkpoint is a position in an RNG stream.
type Checkpoint struct {
	Key   SimulationKey
	Draws uint64
}

// RNG is the single random stream shared by every builder and processor.
// Values are drawn in a fixed order, so the stream position after any step is
// a pure function of the key and configuration.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type RNG struct {
	*rand.Rand
	key SimulationKey
	src *countingSource
}

// NewRNG creates an RNG seeded from key.
func NewRNG(key SimulationKey) *RNG {
	src := newCountingSource(int64(key))
	return &RNG{Rand: rand.New(src), key: key, src: src}
}

// Key returns the SimulationKey used to create this RNG.
func (r *RNG) Key() SimulationKey {
	return r.key
}

// Draws returns the number of source steps consumed so far.
func (r *RNG) Draws() uint64 {
	return r.src.draws
}

// Checkpoint captures the current stream position.
func (r *RNG) Checkpoint() Checkpoint {
	return Checkpoint{Key: r.key, Draws: r.src.draws}
}

// Restore rewinds (or fast-forwards) the stream to cp by reseeding and replaying.
func (r *RNG) Restore(cp Checkpoint) {
	r.key = cp.Key
	r.src.Seed(int64(cp.Key))
	for r.src.draws < cp.Draws {
		r.src.Int63()
	}
}

// UniformInt returns an integer uniform in [lo, hi] inclusive.
func (r *RNG) UniformInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Uniform returns a float uniform in [lo, hi].
func (r *RNG) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}

// Bernoulli returns true with probability p.
func (r *RNG) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// Gauss returns a normal sample with the given mean and standard deviation.
func (r *RNG) Gauss(mean, std float64) float64 {
	return mean + std*r.NormFloat64()
}

// Poisson returns a Poisson-distributed count. Knuth's method is used for small
// means; larger means use a rounded normal approximation. A mean that is not a
// positive finite number yields 0.
func (r *RNG) Poisson(mean float64) int {
	if !(mean > 0) || math.IsInf(mean, 1) {
		return 0
	}
	if mean > 30 {
		n := int(math.Round(r.Gauss(mean, math.Sqrt(mean))))
		if n < 0 {
			return 0
		}
		return n
	}
	l := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= r.Float64()
		if p <= l {
			return k
		}
		k++
	}
}

// Sample returns k distinct indices from [0, n) in draw order (partial Fisher-Yates).
func (r *RNG) Sample(n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + r.Intn(n-i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx[:k]
}

// WeightedIndex returns an index chosen with probability proportional to its weight.
// Returns -1 when no weight is positive.
func (r *RNG) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	u := r.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		if u < w {
			return i
		}
		u -= w
	}
	return last
}
