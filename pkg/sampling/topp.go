package sampling

import (
	"fmt"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// TopP is nucleus truncation.
//
// By default the cumulative sum runs over the raw scores in descending order,
// not over softmax probabilities, so scores above 1 exhaust the threshold on
// the first candidate. Set Normalize to accumulate softmax probability mass
// instead. Either way the highest scoring candidate is always kept.
type TopP struct {
	P         float64
	Normalize bool
	Backend   Backend
}

// Name implements Policy.
func (p TopP) Name() string { return PolicyTopP }

// mask returns the table's scores with removed candidates set to -Inf.
func (p TopP) mask(t *candidate.Table) ([]float64, error) {
	if !validFraction(p.P) {
		return nil, fmt.Errorf("%w: p=%v outside (0, 1]", ErrInvalidTruncationSize, p.P)
	}

	scores := t.Scores()
	order := t.SortedByScore()
	values := gather(scores, order)
	if p.Normalize {
		values = orCPU(p.Backend).Softmax(values)
	}

	// The removal mask trails the threshold crossing by one position, which
	// keeps the first candidate past p.
	var cum float64
	exceeded := false
	for i, idx := range order {
		if i > 0 && exceeded {
			scores[idx] = negInf
		}
		cum += values[i]
		exceeded = cum > p.P
	}

	return scores, nil
}

// SelectSubset returns the rows inside the nucleus, in table order.
func (p TopP) SelectSubset(t *candidate.Table) (*candidate.Table, error) {
	scores, err := p.mask(t)
	if err != nil {
		return nil, err
	}
	return t.Take(selectable(scores)), nil
}

// SelectOne draws one row from inside the nucleus.
func (p TopP) SelectOne(t *candidate.Table, s Strategy) (string, error) {
	scores, err := p.mask(t)
	if err != nil {
		return "", err
	}
	return draw(t, scores, s)
}
