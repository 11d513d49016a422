// Package candidate holds the scored candidate tables that selection policies
// operate on.
package candidate

import (
	"math"
	"slices"
)

const (
	// MutantColumn is the default identifier column name.
	MutantColumn = "mutant"

	// ScoreColumn is the default score column name.
	ScoreColumn = "avg_score"
)

// Candidate is one scored row of a Table.
type Candidate struct {
	// Mutant identifies the candidate (e.g. "A42G").
	Mutant string `json:"mutant"`

	// AvgScore is the candidate's score. NaN marks an unscored row.
	AvgScore float64 `json:"avg_score"`

	// Fields carries any extra columns through selection unmodified.
	Fields map[string]string `json:"fields,omitempty"`
}

// Table is an ordered set of candidates. Row order is insertion order.
type Table struct {
	rows []Candidate
}

// NewTable creates a table over the given rows. The rows are copied.
func NewTable(rows ...Candidate) *Table {
	return &Table{rows: slices.Clone(rows)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row.
func (t *Table) Row(i int) Candidate {
	return t.rows[i]
}

// Rows returns a copy of all rows in table order.
func (t *Table) Rows() []Candidate {
	return slices.Clone(t.rows)
}

// Mutants returns the identifiers in table order.
func (t *Table) Mutants() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Mutant
	}
	return out
}

// Scores returns the score vector aligned with the rows. NaN scores are
// replaced with negative infinity so they can never be selected.
func (t *Table) Scores() []float64 {
	out := make([]float64, len(t.rows))
	for i, r := range t.rows {
		out[i] = Normalize(r.AvgScore)
	}
	return out
}

// Take returns a new table holding the rows at the given positions, in the
// order the positions are given.
func (t *Table) Take(positions []int) *Table {
	rows := make([]Candidate, len(positions))
	for i, p := range positions {
		rows[i] = t.rows[p]
	}
	return &Table{rows: rows}
}

// Append adds rows to the end of the table.
func (t *Table) Append(rows ...Candidate) {
	t.rows = append(t.rows, rows...)
}

// SortedByScore returns the row positions ordered by descending score.
// Ties keep their table order and unscored rows sort last.
func (t *Table) SortedByScore() []int {
	scores := t.Scores()
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		default:
			return 0
		}
	})
	return order
}

// Normalize maps NaN to negative infinity and leaves every other score alone.
func Normalize(score float64) float64 {
	if math.IsNaN(score) {
		return math.Inf(-1)
	}
	return score
}
