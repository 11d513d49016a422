package candidate

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"slices"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// DefaultQuery selects every row of the "scores" table.
const DefaultQuery = "SELECT * FROM scores"

// LoadSQLite reads a table from a SQLite database. The query must return the
// identifier and score columns; any other column is kept as a passthrough
// field. A NULL score loads as NaN.
func LoadSQLite(ctx context.Context, dbPath, query string, cols Columns) (*Table, error) {
	cols = cols.withDefaults()
	if query == "" {
		query = DefaultQuery
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("could not open database %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not query candidates: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("could not read result columns: %w", err)
	}

	mutantIdx := slices.Index(names, cols.Mutant)
	if mutantIdx < 0 {
		return nil, ErrMissingColumn{Column: cols.Mutant}
	}
	scoreIdx := slices.Index(names, cols.Score)
	if scoreIdx < 0 {
		return nil, ErrMissingColumn{Column: cols.Score}
	}

	t := NewTable()
	for rows.Next() {
		values := make([]sql.NullString, len(names))
		dest := make([]any, len(names))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("could not scan candidate row: %w", err)
		}

		score := math.NaN()
		if values[scoreIdx].Valid {
			score, err = ParseScore(values[scoreIdx].String)
			if err != nil {
				return nil, fmt.Errorf("invalid %s for %s: %w", cols.Score, values[mutantIdx].String, err)
			}
		}

		c := Candidate{Mutant: values[mutantIdx].String, AvgScore: score}
		for i, v := range values {
			if i == mutantIdx || i == scoreIdx || !v.Valid {
				continue
			}
			if c.Fields == nil {
				c.Fields = make(map[string]string, len(names)-2)
			}
			c.Fields[names[i]] = v.String
		}
		t.Append(c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate candidates: %w", err)
	}

	return t, nil
}
