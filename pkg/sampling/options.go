package sampling

import (
	"errors"
	"fmt"
	"strings"
)

// Options selects a policy and its parameters. Pointer fields are optional
// and fall back to the package defaults.
type Options struct {
	// Policy parameters
	Policy    string   `toml:"policy" json:"policy,omitempty"`         // Policy name (top-k, top-p, typical, mirostat, random)
	K         *int     `toml:"k" json:"k,omitempty"`                   // Truncation size (top-k)
	P         *float64 `toml:"p" json:"p,omitempty"`                   // Cumulative threshold (top-p)
	Normalize *bool    `toml:"normalize" json:"normalize,omitempty"`   // Accumulate softmax mass instead of raw scores (top-p)
	Mass      *float64 `toml:"mass" json:"mass,omitempty"`             // Probability mass to keep (typical)
	Tau       *float64 `toml:"tau" json:"tau,omitempty"`               // Target surprise (mirostat)
	VocabSize *int     `toml:"vocab_size" json:"vocab_size,omitempty"` // Alphabet cardinality (mirostat)
	Alphabet  string   `toml:"alphabet" json:"alphabet,omitempty"`     // Alphabet whose length is the vocab size when vocab_size is unset

	// Sampler parameters
	Temperature *float64 `toml:"temperature" json:"temperature,omitempty"` // Sampler sharpness
	Seed        *int64   `toml:"seed" json:"seed,omitempty"`               // Random seed for reproducibility
	Backend     string   `toml:"backend" json:"backend,omitempty"`         // Compute backend (auto, cpu)
}

// DefaultOptions returns typical sampling at mass 0.9 with temperature 1.
func DefaultOptions() Options {
	return Options{Policy: PolicyTypical}
}

// Merge returns o with every field set in over replacing the one in o.
func (o Options) Merge(over Options) Options {
	if over.Policy != "" {
		o.Policy = over.Policy
	}
	if over.K != nil {
		o.K = over.K
	}
	if over.P != nil {
		o.P = over.P
	}
	if over.Normalize != nil {
		o.Normalize = over.Normalize
	}
	if over.Mass != nil {
		o.Mass = over.Mass
	}
	if over.Tau != nil {
		o.Tau = over.Tau
	}
	if over.VocabSize != nil {
		o.VocabSize = over.VocabSize
	}
	if over.Alphabet != "" {
		o.Alphabet = over.Alphabet
	}
	if over.Temperature != nil {
		o.Temperature = over.Temperature
	}
	if over.Seed != nil {
		o.Seed = over.Seed
	}
	if over.Backend != "" {
		o.Backend = over.Backend
	}
	return o
}

// vocabSize resolves the mirostat vocabulary size.
func (o Options) vocabSize() int {
	switch {
	case o.VocabSize != nil:
		return *o.VocabSize
	case o.Alphabet != "":
		return len([]rune(o.Alphabet))
	default:
		return DefaultVocabSize
	}
}

// CanonicalPolicy normalises a policy name ("top_k", "TopK", "nucleus" ...).
func CanonicalPolicy(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)

	switch key {
	case "topk":
		return PolicyTopK, nil
	case "topp", "nucleus":
		return PolicyTopP, nil
	case "typical":
		return PolicyTypical, nil
	case "mirostat":
		return PolicyMirostat, nil
	case "random", "":
		return PolicyRandom, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// NewPolicy builds the policy the options name.
func (o Options) NewPolicy() (Policy, error) {
	name, err := CanonicalPolicy(o.Policy)
	if err != nil {
		return nil, err
	}

	backend, err := NewBackend(o.Backend)
	if err != nil {
		return nil, err
	}

	switch name {
	case PolicyTopK:
		if o.K == nil {
			return nil, fmt.Errorf("%w: top-k requires k", ErrInvalidTruncationSize)
		}
		return TopK{K: *o.K}, nil
	case PolicyTopP:
		if o.P == nil {
			return nil, fmt.Errorf("%w: top-p requires p", ErrInvalidTruncationSize)
		}
		return TopP{P: *o.P, Normalize: o.Normalize != nil && *o.Normalize, Backend: backend}, nil
	case PolicyTypical:
		mass := DefaultMass
		if o.Mass != nil {
			mass = *o.Mass
		}
		return Typical{Mass: mass, Backend: backend}, nil
	case PolicyMirostat:
		tau := DefaultTau
		if o.Tau != nil {
			tau = *o.Tau
		}
		return Mirostat{Tau: tau, VocabSize: o.vocabSize()}, nil
	default:
		return Random{}, nil
	}
}

// NewStrategy builds the temperature sampler the options describe.
func (o Options) NewStrategy() (*TemperatureSampler, error) {
	backend, err := NewBackend(o.Backend)
	if err != nil {
		return nil, err
	}

	temperature := DefaultTemperature
	if o.Temperature != nil {
		temperature = *o.Temperature
	}

	opts := []SamplerOption{WithBackend(backend)}
	if o.Seed != nil {
		opts = append(opts, WithSeed(uint64(*o.Seed)))
	}

	return NewTemperatureSampler(temperature, opts...)
}

// Validate checks that the options build both a policy and a sampler.
func (o Options) Validate() error {
	var errs []error
	if _, err := o.NewPolicy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := o.NewStrategy(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
