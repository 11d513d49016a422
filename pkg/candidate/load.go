package candidate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ReadJSON reads a table from a JSON array of candidate objects.
func ReadJSON(r io.Reader) (*Table, error) {
	t := NewTable()
	if err := json.NewDecoder(r).Decode(t); err != nil {
		return nil, fmt.Errorf("could not decode candidates: %w", err)
	}
	return t, nil
}

// LoadFile reads a table from a CSV or JSON file, chosen by extension.
// Any extension other than .json is read as CSV. The path "-" reads CSV
// from stdin.
func LoadFile(path string, cols Columns) (*Table, error) {
	if path == "-" {
		return ReadCSV(os.Stdin, cols)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadJSON(f)
	}
	return ReadCSV(f, cols)
}

// Merge unions tables in order. The first occurrence of each mutant wins;
// later duplicates are counted and dropped.
func Merge(tables ...*Table) (*Table, int) {
	out := NewTable()
	seen := make(map[string]struct{})
	var dup int

	for _, t := range tables {
		for _, r := range t.rows {
			if _, ok := seen[r.Mutant]; ok {
				dup++
				continue
			}
			seen[r.Mutant] = struct{}{}
			out.Append(r)
		}
	}

	return out, dup
}
