package candidate

import (
	"encoding/json"
	"math"
)

// wireCandidate is the JSON shape of a Candidate. A null or missing score
// decodes to NaN and a NaN or infinite score encodes as null.
type wireCandidate struct {
	Mutant   string            `json:"mutant"`
	AvgScore *float64          `json:"avg_score"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (c Candidate) MarshalJSON() ([]byte, error) {
	w := wireCandidate{Mutant: c.Mutant, Fields: c.Fields}
	if !math.IsNaN(c.AvgScore) && !math.IsInf(c.AvgScore, 0) {
		score := c.AvgScore
		w.AvgScore = &score
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var w wireCandidate
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.Mutant = w.Mutant
	c.Fields = w.Fields
	c.AvgScore = math.NaN()
	if w.AvgScore != nil {
		c.AvgScore = *w.AvgScore
	}
	return nil
}

// MarshalJSON encodes the table as a JSON array of candidates.
func (t *Table) MarshalJSON() ([]byte, error) {
	if t == nil || t.rows == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t.rows)
}

// UnmarshalJSON decodes a JSON array of candidates.
func (t *Table) UnmarshalJSON(data []byte) error {
	var rows []Candidate
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	t.rows = rows
	return nil
}
