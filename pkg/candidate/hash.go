package candidate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// hashRow is the canonical form of a row used for hashing. Scores are
// rendered as strings so NaN and infinities hash deterministically.
type hashRow struct {
	Mutant string            `json:"m"`
	Score  string            `json:"s"`
	Fields map[string]string `json:"f,omitempty"`
}

// Hash returns the content-addressed identifier of the table (SHA-256,
// hex-encoded). Identical rows in identical order produce identical hashes.
func (t *Table) Hash() string {
	rows := make([]hashRow, t.Len())
	for i := range rows {
		r := t.rows[i]
		rows[i] = hashRow{
			Mutant: r.Mutant,
			Score:  strconv.FormatFloat(r.AvgScore, 'g', -1, 64),
			Fields: r.Fields,
		}
	}

	// Canonical JSON encoding for deterministic hashing; map keys are sorted
	data, err := json.Marshal(rows)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
