// Package render prints candidate tables for the sieve CLI.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/papercomputeco/sieve/pkg/candidate"
)

// Output formats accepted by --format.
const (
	FormatAuto  = "auto"
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// NewRenderer binds table styles to out. Color is dropped when NO_COLOR is
// set or CLICOLOR=0.
func NewRenderer(out io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(out)
	if termenv.EnvNoColor() {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Resolve validates format and turns FormatAuto into a table on a terminal
// and CSV anywhere else.
func Resolve(format string, out io.Writer) (string, error) {
	switch format {
	case FormatTable, FormatCSV, FormatJSON:
		return format, nil
	case FormatAuto, "":
		if isTerminal(out) {
			return FormatTable, nil
		}
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, table, csv or json)", format)
	}
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Write prints t to out in format, which must already be resolved.
func Write(out io.Writer, t *candidate.Table, cols candidate.Columns, format string) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(out, Table(NewRenderer(out), t, cols))
		return err
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatCSV:
		return candidate.WriteCSV(out, t, cols)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Table renders t as a bordered lipgloss table with the mutant and score
// columns first.
func Table(r *lipgloss.Renderer, t *candidate.Table, cols candidate.Columns) string {
	if cols.Mutant == "" {
		cols.Mutant = candidate.MutantColumn
	}
	if cols.Score == "" {
		cols.Score = candidate.ScoreColumn
	}

	extra := t.FieldNames()
	headers := append([]string{"#", cols.Mutant, cols.Score}, extra...)

	rows := make([][]string, 0, t.Len())
	for i, c := range t.Rows() {
		row := []string{fmt.Sprint(i + 1), c.Mutant, candidate.FormatScore(c.AvgScore)}
		for _, name := range extra {
			row = append(row, c.Fields[name])
		}
		rows = append(rows, row)
	}

	headerStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)
	numberStyle := cellStyle.Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0 || col == 2:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		String()
}
