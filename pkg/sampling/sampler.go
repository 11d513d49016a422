package sampling

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// DefaultTemperature leaves scores unscaled.
const DefaultTemperature = 1.0

// Strategy draws one position from a score vector.
type Strategy interface {
	Draw(scores []float64) (int, error)
}

// TemperatureSampler draws from softmax(scores / temperature). It is safe for
// concurrent use; draws are serialized on its random source.
type TemperatureSampler struct {
	temperature float64
	backend     Backend

	mu  sync.Mutex
	rng *rand.Rand
}

// SamplerOption configures a TemperatureSampler.
type SamplerOption func(*TemperatureSampler)

// WithSeed makes draws reproducible.
func WithSeed(seed uint64) SamplerOption {
	return func(s *TemperatureSampler) {
		// Golden ratio hash for the PCG stream
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B9))
	}
}

// WithRand uses the given random source.
func WithRand(rng *rand.Rand) SamplerOption {
	return func(s *TemperatureSampler) {
		s.rng = rng
	}
}

// WithBackend selects the compute backend for the softmax.
func WithBackend(b Backend) SamplerOption {
	return func(s *TemperatureSampler) {
		s.backend = b
	}
}

// NewTemperatureSampler creates a sampler. The temperature must be finite and
// greater than zero.
func NewTemperatureSampler(temperature float64, opts ...SamplerOption) (*TemperatureSampler, error) {
	if !(temperature > 0) || math.IsInf(temperature, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemperature, temperature)
	}

	s := &TemperatureSampler{temperature: temperature}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.backend = orCPU(s.backend)

	return s, nil
}

// Temperature returns the configured temperature.
func (s *TemperatureSampler) Temperature() float64 {
	return s.temperature
}

// Draw returns an index drawn from softmax(scores / temperature). NaN scores
// count as negative infinity and never win.
func (s *TemperatureSampler) Draw(scores []float64) (int, error) {
	if len(scores) == 0 {
		return -1, fmt.Errorf("%w: no scores", ErrInvalidDistribution)
	}

	maxScore := math.Inf(-1)
	for _, v := range scores {
		maxScore = max(maxScore, candidate.Normalize(v))
	}
	if math.IsInf(maxScore, -1) {
		return -1, fmt.Errorf("%w: every score is masked", ErrInvalidDistribution)
	}
	if math.IsInf(maxScore, 1) {
		return -1, fmt.Errorf("%w: infinite score", ErrInvalidDistribution)
	}

	// Shifted so the best entry scales to 0 at any temperature.
	scaled := make([]float64, len(scores))
	for i, v := range scores {
		scaled[i] = (candidate.Normalize(v) - maxScore) / s.temperature
	}

	probs := s.backend.Softmax(scaled)
	last := -1
	for i, p := range probs {
		if math.IsNaN(p) {
			return -1, fmt.Errorf("%w: scores do not form a distribution", ErrInvalidDistribution)
		}
		if p > 0 {
			last = i
		}
	}
	if last < 0 {
		return -1, fmt.Errorf("%w: every score is masked", ErrInvalidDistribution)
	}

	s.mu.Lock()
	r := s.rng.Float64()
	s.mu.Unlock()

	var cdf float64
	for i, p := range probs {
		cdf += p
		if p > 0 && r < cdf {
			return i, nil
		}
	}

	// rounding left r above the final cdf
	return last, nil
}

// ArgmaxSampler always draws the first position holding the highest score.
type ArgmaxSampler struct{}

// Draw implements Strategy.
func (ArgmaxSampler) Draw(scores []float64) (int, error) {
	best := -1
	bestVal := math.Inf(-1)
	for i, v := range scores {
		v = candidate.Normalize(v)
		if v > bestVal {
			best, bestVal = i, v
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("%w: every score is masked", ErrInvalidDistribution)
	}
	return best, nil
}
