package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/sieve/cmd/sieve/cmdutil"
	mcpcmder "github.com/papercomputeco/sieve/cmd/sieve/mcp"
	mergecmder "github.com/papercomputeco/sieve/cmd/sieve/merge"
	samplecmder "github.com/papercomputeco/sieve/cmd/sieve/sample"
	servecmder "github.com/papercomputeco/sieve/cmd/sieve/serve"
)

const rootLongDesc string = `sieve selects which scored candidates to carry into the next round.

Given a table of mutants and their average scores, sieve truncates or
reweights it with a sampling policy (top-k, top-p, typical, mirostat or
random) and draws from what remains with a temperature sampler.

Options come from sieve.toml in the working directory (or --config),
overridden by command flags.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sieve",
		Short:         "Stochastic selection over scored candidates",
		Long:          rootLongDesc,
		Version:       cmdutil.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmdutil.AddPersistentFlags(cmd)

	cmd.AddCommand(
		samplecmder.NewSampleCmd(),
		mergecmder.NewMergeCmd(),
		servecmder.NewServeCmd(),
		mcpcmder.NewMCPCmd(),
	)

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
