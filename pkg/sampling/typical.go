package sampling

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// DefaultMass is the probability mass typical sampling keeps by default.
const DefaultMass = 0.9

// Typical keeps the candidates whose surprise lies closest to the entropy of
// the score distribution, adding them in order of closeness until at least
// Mass of the probability is covered.
type Typical struct {
	Mass    float64
	Backend Backend
}

// Name implements Policy.
func (p Typical) Name() string { return PolicyTypical }

// mask returns the table's scores with atypical candidates set to -Inf.
func (p Typical) mask(t *candidate.Table) ([]float64, error) {
	if !validFraction(p.Mass) {
		return nil, fmt.Errorf("%w: mass=%v outside (0, 1]", ErrInvalidTruncationSize, p.Mass)
	}

	scores := t.Scores()
	if len(selectable(scores)) == 0 {
		return scores, nil
	}

	backend := orCPU(p.Backend)
	logp := backend.LogSoftmax(scores)
	probs := backend.Softmax(scores)

	// 0 * -Inf terms are NaN and contribute nothing
	var entropy float64
	for i, lp := range logp {
		if term := probs[i] * lp; !math.IsNaN(term) {
			entropy -= term
		}
	}

	deviation := make([]float64, len(scores))
	order := make([]int, len(scores))
	for i, lp := range logp {
		deviation[i] = math.Abs(-lp - entropy)
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(deviation[a], deviation[b])
	})

	// Count the prefix still short of the mass; the candidate that reaches
	// it is the boundary.
	var cum float64
	last := 0
	for _, idx := range order {
		cum += probs[idx]
		if cum < p.Mass {
			last++
		}
	}
	last = min(last, len(order)-1)

	bound := deviation[order[last]]
	for i, d := range deviation {
		if d > bound {
			scores[i] = negInf
		}
	}

	return scores, nil
}

// SelectSubset returns the typical rows in table order.
func (p Typical) SelectSubset(t *candidate.Table) (*candidate.Table, error) {
	scores, err := p.mask(t)
	if err != nil {
		return nil, err
	}
	return t.Take(selectable(scores)), nil
}

// SelectOne draws one row from the typical set.
func (p Typical) SelectOne(t *candidate.Table, s Strategy) (string, error) {
	scores, err := p.mask(t)
	if err != nil {
		return "", err
	}
	return draw(t, scores, s)
}
