package mergecmder

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sieve/cmd/sieve/cmdutil"
	"github.com/papercomputeco/sieve/cmd/sieve/render"
	"github.com/papercomputeco/sieve/pkg/candidate"
)

const mergeLongDesc string = `Merge one or more scored candidate tables into one.

Tables are read in order and unioned by mutant: the first occurrence of a
mutant wins and later duplicates are skipped. Passthrough columns are kept.
The result is written as CSV, or as JSON when the output file ends in .json.

Examples:
  sieve merge round1.csv round2.csv > pool.csv
  sieve merge -o pool.json round1.csv round2.json`

const mergeShortDesc string = "Merge scored candidate tables"

type mergeCommander struct {
	output string
}

func NewMergeCmd() *cobra.Command {
	cmder := &mergeCommander{}

	cmd := &cobra.Command{
		Use:   "merge [sources...]",
		Short: mergeShortDesc,
		Long:  mergeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&cmder.output, "output", "o", "", "Path to write the merged table (default: stdout)")

	return cmd
}

func (c *mergeCommander) run(cmd *cobra.Command, sources []string) error {
	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		return err
	}
	cols := cfg.Input.Columns

	merged := candidate.NewTable()
	var totalDuped int

	for _, srcPath := range sources {
		source, err := candidate.LoadFile(srcPath, cols)
		if err != nil {
			return fmt.Errorf("could not read source %s: %w", srcPath, err)
		}

		var srcDuped int
		merged, srcDuped = candidate.Merge(merged, source)
		totalDuped += srcDuped

		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %d new, %d already present\n", srcPath, source.Len()-srcDuped, srcDuped)
	}

	target := "stdout"
	out := cmd.OutOrStdout()
	format := render.FormatCSV

	if c.output != "" {
		f, err := os.Create(c.output)
		if err != nil {
			return fmt.Errorf("could not create %s: %w", c.output, err)
		}
		defer f.Close()

		target, out = c.output, f
		if strings.EqualFold(filepath.Ext(c.output), ".json") {
			format = render.FormatJSON
		}
	}

	if err := render.Write(out, merged, cols, format); err != nil {
		return fmt.Errorf("could not write %s: %w", target, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Merged %d candidates from %d sources (%d duplicates skipped) into %s\n",
		merged.Len(), len(sources), totalDuped, target)

	return nil
}
