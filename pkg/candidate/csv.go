package candidate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Columns names the identifier and score columns of a tabular source.
type Columns struct {
	Mutant string `toml:"mutant_column" json:"mutant_column,omitempty"`
	Score  string `toml:"score_column" json:"score_column,omitempty"`
}

// DefaultColumns returns the "mutant" / "avg_score" column pair.
func DefaultColumns() Columns {
	return Columns{Mutant: MutantColumn, Score: ScoreColumn}
}

func (c Columns) withDefaults() Columns {
	if c.Mutant == "" {
		c.Mutant = MutantColumn
	}
	if c.Score == "" {
		c.Score = ScoreColumn
	}
	return c
}

// ErrMissingColumn is returned when a required column is absent from a source.
type ErrMissingColumn struct {
	Column string
}

func (e ErrMissingColumn) Error() string {
	return "missing required column: " + e.Column
}

// ErrNonFiniteScore is returned for a score cell that parses to an infinity.
var ErrNonFiniteScore = errors.New("score is not finite")

// ParseScore parses a score cell. Empty cells and "nan"/"null"/"na" parse as
// NaN. Infinite values are rejected.
func ParseScore(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "nan", "null", "na", "none":
		return math.NaN(), nil
	}

	score, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonFiniteScore, cell)
	}
	return score, nil
}

// ReadCSV reads a table from CSV with a header row. Columns other than the
// identifier and score are kept as passthrough fields.
func ReadCSV(r io.Reader, cols Columns) (*Table, error) {
	cols = cols.withDefaults()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty csv input")
		}
		return nil, fmt.Errorf("could not read csv header: %w", err)
	}

	mutantIdx := slices.Index(header, cols.Mutant)
	if mutantIdx < 0 {
		return nil, ErrMissingColumn{Column: cols.Mutant}
	}
	scoreIdx := slices.Index(header, cols.Score)
	if scoreIdx < 0 {
		return nil, ErrMissingColumn{Column: cols.Score}
	}

	t := NewTable()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read csv line %d: %w", line, err)
		}

		score, err := ParseScore(record[scoreIdx])
		if err != nil {
			return nil, fmt.Errorf("invalid %s on line %d: %w", cols.Score, line, err)
		}

		c := Candidate{Mutant: record[mutantIdx], AvgScore: score}
		for i, cell := range record {
			if i == mutantIdx || i == scoreIdx {
				continue
			}
			if c.Fields == nil {
				c.Fields = make(map[string]string, len(record)-2)
			}
			c.Fields[header[i]] = cell
		}
		t.Append(c)
	}

	return t, nil
}

// WriteCSV writes the table as CSV. Passthrough fields become extra columns in
// sorted name order; unscored rows are written with an empty score.
func WriteCSV(w io.Writer, t *Table, cols Columns) error {
	cols = cols.withDefaults()
	extra := t.FieldNames()

	writer := csv.NewWriter(w)
	if err := writer.Write(append([]string{cols.Mutant, cols.Score}, extra...)); err != nil {
		return fmt.Errorf("could not write csv header: %w", err)
	}

	for _, r := range t.rows {
		record := make([]string, 0, 2+len(extra))
		record = append(record, r.Mutant, FormatScore(r.AvgScore))
		for _, name := range extra {
			record = append(record, r.Fields[name])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("could not write csv row %s: %w", r.Mutant, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// FormatScore renders a score for text output; NaN renders as empty.
func FormatScore(score float64) string {
	if math.IsNaN(score) {
		return ""
	}
	return strconv.FormatFloat(score, 'g', -1, 64)
}

// FieldNames returns the sorted union of passthrough field names.
func (t *Table) FieldNames() []string {
	seen := make(map[string]struct{})
	for _, r := range t.rows {
		for name := range r.Fields {
			seen[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
