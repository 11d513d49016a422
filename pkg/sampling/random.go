package sampling

import "github.com/papercomputeco/sieve/pkg/candidate"

// Random applies no truncation.
type Random struct{}

// Name implements Policy.
func (Random) Name() string { return PolicyRandom }

// SelectSubset returns a copy of the whole table.
func (Random) SelectSubset(t *candidate.Table) (*candidate.Table, error) {
	return candidate.NewTable(t.Rows()...), nil
}

// SelectOne draws over every scored row.
func (Random) SelectOne(t *candidate.Table, s Strategy) (string, error) {
	return draw(t, t.Scores(), s)
}
