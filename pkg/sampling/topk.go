package sampling

import (
	"fmt"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// TopK keeps the K highest scoring candidates. Ties keep table order.
type TopK struct {
	K int
}

// Name implements Policy.
func (p TopK) Name() string { return PolicyTopK }

func (p TopK) positions(t *candidate.Table) ([]int, error) {
	if p.K < 1 || p.K > t.Len() {
		return nil, fmt.Errorf("%w: k=%d outside [1, %d]", ErrInvalidTruncationSize, p.K, t.Len())
	}
	return t.SortedByScore()[:p.K], nil
}

// SelectSubset returns the K best rows in descending score order. No
// sampling takes place.
func (p TopK) SelectSubset(t *candidate.Table) (*candidate.Table, error) {
	top, err := p.positions(t)
	if err != nil {
		return nil, err
	}
	return t.Take(top), nil
}

// SelectOne draws among the K best rows.
func (p TopK) SelectOne(t *candidate.Table, s Strategy) (string, error) {
	top, err := p.positions(t)
	if err != nil {
		return "", err
	}

	scores := t.Scores()
	masked := make([]float64, len(scores))
	for i := range masked {
		masked[i] = negInf
	}
	for _, i := range top {
		masked[i] = scores[i]
	}

	return draw(t, masked, s)
}
