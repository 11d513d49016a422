package sampling

import (
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// Selector pairs a policy with the strategy that draws for it and logs each
// selection.
type Selector struct {
	policy   Policy
	strategy Strategy
	logger   *zap.Logger
}

// NewSelector creates a Selector. A nil logger discards output.
func NewSelector(policy Policy, strategy Strategy, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{
		policy:   policy,
		strategy: strategy,
		logger:   logger,
	}
}

// NewSelectorFromOptions builds the policy and sampler from options.
func NewSelectorFromOptions(o Options, logger *zap.Logger) (*Selector, error) {
	policy, err := o.NewPolicy()
	if err != nil {
		return nil, err
	}

	strategy, err := o.NewStrategy()
	if err != nil {
		return nil, err
	}

	return NewSelector(policy, strategy, logger), nil
}

// Policy returns the selector's policy.
func (s *Selector) Policy() Policy {
	return s.policy
}

// One draws a single candidate.
func (s *Selector) One(t *candidate.Table) (string, error) {
	mutant, err := s.policy.SelectOne(t, s.strategy)
	if err != nil {
		s.logger.Debug("selection failed",
			zap.String("policy", s.policy.Name()),
			zap.Int("candidates", t.Len()),
			zap.Error(err),
		)
		return "", err
	}

	s.logger.Debug("selected candidate",
		zap.String("policy", s.policy.Name()),
		zap.Int("candidates", t.Len()),
		zap.String("mutant", mutant),
	)
	return mutant, nil
}

// Subset returns the candidates kept by the policy.
func (s *Selector) Subset(t *candidate.Table) (*candidate.Table, error) {
	kept, err := s.policy.SelectSubset(t)
	if err != nil {
		s.logger.Debug("subset selection failed",
			zap.String("policy", s.policy.Name()),
			zap.Int("candidates", t.Len()),
			zap.Error(err),
		)
		return nil, err
	}

	// Hash walks every row
	if ce := s.logger.Check(zap.DebugLevel, "selected subset"); ce != nil {
		ce.Write(
			zap.String("policy", s.policy.Name()),
			zap.Int("candidates", t.Len()),
			zap.Int("kept", kept.Len()),
			zap.String("table_hash", t.Hash()[:16]),
		)
	}
	return kept, nil
}
