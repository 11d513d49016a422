package mcpcmder

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/cmd/sieve/cmdutil"
	"github.com/papercomputeco/sieve/pkg/mcptool"
)

const mcpLongDesc string = `Serve the select_candidates tool over MCP on stdio.

The tool takes a candidate table and optional sampling options, merged over
the defaults from sieve.toml, and returns the selected mutants. Logs go to
stderr; stdout carries the protocol.

Examples:
  sieve mcp
  sieve mcp --config sieve.toml`

const mcpShortDesc string = "Serve candidate selection as an MCP tool"

type mcpCommander struct {
	transport mcp.Transport
}

func NewMCPCmd() *cobra.Command {
	return newMCPCmd(&mcpCommander{})
}

func newMCPCmd(cmder *mcpCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	return cmd
}

func (c *mcpCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := cmdutil.LoadConfig(cmd)
	if err != nil {
		return err
	}

	log := cmdutil.Logger(cmd)
	defer log.Sync()

	transport := c.transport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}

	server := mcptool.NewServer(cmdutil.Version, cfg.Sampling, log)
	log.Info("serving MCP tools", zap.String("tool", mcptool.ToolName), zap.String("policy", cfg.Sampling.Policy))

	if err := server.Run(ctx, transport); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server stopped: %w", err)
	}
	return nil
}
