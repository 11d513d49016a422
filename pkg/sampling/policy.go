// Package sampling implements stochastic selection policies over a scored
// candidate table: top-k, top-p (nucleus), typical, mirostat and random.
//
// Every policy has two entry points sharing the same truncation logic:
// SelectSubset returns the reduced table and SelectOne draws a single
// candidate from the truncated scores through a Strategy.
package sampling

import (
	"math"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// Policy is a named truncation rule over a candidate table.
type Policy interface {
	// Name returns the canonical policy name (e.g. "top-k").
	Name() string

	// SelectOne truncates the table's scores and draws one candidate through
	// the strategy, returning its mutant identifier.
	SelectOne(t *candidate.Table, s Strategy) (string, error)

	// SelectSubset returns the candidates that survive truncation.
	SelectSubset(t *candidate.Table) (*candidate.Table, error)
}

// Canonical policy names.
const (
	PolicyTopK     = "top-k"
	PolicyTopP     = "top-p"
	PolicyTypical  = "typical"
	PolicyMirostat = "mirostat"
	PolicyRandom   = "random"
)

// PolicyNames lists every supported policy.
func PolicyNames() []string {
	return []string{PolicyTopK, PolicyTopP, PolicyTypical, PolicyMirostat, PolicyRandom}
}

var negInf = math.Inf(-1)

// selectable returns the positions whose score is not masked, in order.
func selectable(scores []float64) []int {
	positions := make([]int, 0, len(scores))
	for i, v := range scores {
		if v != negInf {
			positions = append(positions, i)
		}
	}
	return positions
}

// draw samples a position from scores and returns the mutant at that
// position of t.
func draw(t *candidate.Table, scores []float64, s Strategy) (string, error) {
	i, err := s.Draw(scores)
	if err != nil {
		return "", err
	}
	return t.Row(i).Mutant, nil
}

func gather(scores []float64, order []int) []float64 {
	out := make([]float64, len(order))
	for i, idx := range order {
		out[i] = scores[idx]
	}
	return out
}

func validFraction(v float64) bool {
	return v > 0 && v <= 1
}
