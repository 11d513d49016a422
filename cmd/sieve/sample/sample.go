package samplecmder

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/cmd/sieve/cmdutil"
	"github.com/papercomputeco/sieve/cmd/sieve/render"
	"github.com/papercomputeco/sieve/pkg/candidate"
	"github.com/papercomputeco/sieve/pkg/config"
	"github.com/papercomputeco/sieve/pkg/sampling"
)

const sampleLongDesc string = `Select candidates from a scored table.

Reads a CSV or JSON table (by extension), a SQLite query result, or CSV on
stdin, builds the selection policy from sieve.toml and the flags below, and
prints the chosen mutant. With --subset, prints every candidate the policy
keeps instead.

Unscored rows (empty, NaN or NULL score) are never selected.

Examples:
  sieve sample scores.csv
  sieve sample --policy top-k --k 5 --subset scores.csv
  sieve sample --policy mirostat --tau 2 --seed 7 scores.json
  sieve sample --sqlite runs.db --query "SELECT * FROM round_3" --subset`

const sampleShortDesc string = "Select candidates from a scored table"

type sampleCommander struct {
	policy      string
	k           int
	p           float64
	normalize   bool
	mass        float64
	tau         float64
	vocabSize   int
	alphabet    string
	temperature float64
	seed        int64
	backend     string

	subset       bool
	format       string
	sqlitePath   string
	query        string
	mutantColumn string
	scoreColumn  string
}

type selectionOutput struct {
	Policy    string `json:"policy"`
	Mutant    string `json:"mutant"`
	TableHash string `json:"table_hash"`
}

func NewSampleCmd() *cobra.Command {
	cmder := &sampleCommander{}

	cmd := &cobra.Command{
		Use:   "sample [file]",
		Short: sampleShortDesc,
		Long:  sampleLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cmder.policy, "policy", "", "Selection policy (top-k, top-p, typical, mirostat, random)")
	flags.IntVar(&cmder.k, "k", 0, "Candidates to keep (top-k)")
	flags.Float64Var(&cmder.p, "p", 0, "Cumulative score threshold (top-p)")
	flags.BoolVar(&cmder.normalize, "normalize", false, "Accumulate softmax probability instead of raw scores (top-p)")
	flags.Float64Var(&cmder.mass, "mass", sampling.DefaultMass, "Probability mass to keep (typical)")
	flags.Float64Var(&cmder.tau, "tau", sampling.DefaultTau, "Target surprise (mirostat)")
	flags.IntVar(&cmder.vocabSize, "vocab-size", sampling.DefaultVocabSize, "Alphabet cardinality (mirostat)")
	flags.StringVar(&cmder.alphabet, "alphabet", "", "Alphabet whose length sets the vocabulary size (mirostat)")
	flags.Float64VarP(&cmder.temperature, "temperature", "t", sampling.DefaultTemperature, "Sampler temperature")
	flags.Int64Var(&cmder.seed, "seed", 0, "Random seed for reproducible draws")
	flags.StringVar(&cmder.backend, "backend", "", "Compute backend (auto, cpu)")

	flags.BoolVar(&cmder.subset, "subset", false, "Print every kept candidate instead of one draw")
	flags.StringVarP(&cmder.format, "format", "f", render.FormatAuto, "Output format (auto, table, csv, json)")
	flags.StringVarP(&cmder.sqlitePath, "sqlite", "s", "", "Read candidates from a SQLite database")
	flags.StringVar(&cmder.query, "query", "", "SQL query for --sqlite (default from config)")
	flags.StringVar(&cmder.mutantColumn, "mutant-column", "", "Identifier column name (default from config)")
	flags.StringVar(&cmder.scoreColumn, "score-column", "", "Score column name (default from config)")

	return cmd
}

func (c *sampleCommander) run(ctx context.Context, cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		return err
	}

	log := cmdutil.Logger(cmd)
	defer log.Sync()

	format, err := render.Resolve(c.format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	input := c.input(cmd, cfg.Input)
	table, source, err := c.load(ctx, cmd, args, input)
	if err != nil {
		return err
	}
	if table.Len() == 0 {
		return fmt.Errorf("no candidates in %s", source)
	}

	opts := cfg.Sampling.Merge(c.options(cmd))
	sel, err := sampling.NewSelectorFromOptions(opts, log)
	if err != nil {
		return fmt.Errorf("could not build selector: %w", err)
	}

	log.Debug("loaded candidates",
		zap.String("source", source),
		zap.Int("candidates", table.Len()),
		zap.String("policy", sel.Policy().Name()),
	)

	if c.subset {
		kept, err := sel.Subset(table)
		if err != nil {
			return fmt.Errorf("%s subset failed: %w", sel.Policy().Name(), err)
		}
		return render.Write(cmd.OutOrStdout(), kept, input.Columns, format)
	}

	mutant, err := sel.One(table)
	if err != nil {
		return fmt.Errorf("%s selection failed: %w", sel.Policy().Name(), err)
	}

	if format == render.FormatJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(selectionOutput{
			Policy:    sel.Policy().Name(),
			Mutant:    mutant,
			TableHash: table.Hash(),
		})
	}

	fmt.Fprintln(cmd.OutOrStdout(), mutant)
	return nil
}

// options collects the sampling flags the user actually set.
func (c *sampleCommander) options(cmd *cobra.Command) sampling.Options {
	var o sampling.Options
	flags := cmd.Flags()

	if flags.Changed("policy") {
		o.Policy = c.policy
	}
	if flags.Changed("k") {
		o.K = &c.k
	}
	if flags.Changed("p") {
		o.P = &c.p
	}
	if flags.Changed("normalize") {
		o.Normalize = &c.normalize
	}
	if flags.Changed("mass") {
		o.Mass = &c.mass
	}
	if flags.Changed("tau") {
		o.Tau = &c.tau
	}
	if flags.Changed("vocab-size") {
		o.VocabSize = &c.vocabSize
	}
	if flags.Changed("alphabet") {
		o.Alphabet = c.alphabet
	}
	if flags.Changed("temperature") {
		o.Temperature = &c.temperature
	}
	if flags.Changed("seed") {
		o.Seed = &c.seed
	}
	if flags.Changed("backend") {
		o.Backend = c.backend
	}

	return o
}

func (c *sampleCommander) input(cmd *cobra.Command, in config.Input) config.Input {
	flags := cmd.Flags()
	if flags.Changed("mutant-column") {
		in.Mutant = c.mutantColumn
	}
	if flags.Changed("score-column") {
		in.Score = c.scoreColumn
	}
	if flags.Changed("query") {
		in.Query = c.query
	}
	return in
}

// load reads the table and names its source for messages.
func (c *sampleCommander) load(ctx context.Context, cmd *cobra.Command, args []string, in config.Input) (*candidate.Table, string, error) {
	switch {
	case c.sqlitePath != "":
		if len(args) > 0 {
			return nil, "", fmt.Errorf("cannot read both %s and --sqlite", args[0])
		}
		t, err := candidate.LoadSQLite(ctx, c.sqlitePath, in.Query, in.Columns)
		return t, c.sqlitePath, err
	case len(args) == 0 || args[0] == "-":
		t, err := candidate.ReadCSV(cmd.InOrStdin(), in.Columns)
		return t, "stdin", err
	default:
		t, err := candidate.LoadFile(args[0], in.Columns)
		return t, args[0], err
	}
}
