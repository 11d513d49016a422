// Package mcptool exposes candidate selection as a Model Context Protocol
// tool so agents driving a design loop can pick the next variants to score.
package mcptool

import (
	"context"
	"errors"
	"math"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/sieve/pkg/candidate"
	"github.com/papercomputeco/sieve/pkg/sampling"
)

// ToolName is the name the selection tool is registered under.
const ToolName = "select_candidates"

const toolDescription = `Select candidates from a scored table.
Returns one mutant drawn by the sampling policy, or every mutant the policy keeps when subset is true.
Candidates without a score are never selected.`

// Candidate is one scored row of the tool input.
type Candidate struct {
	Mutant   string   `json:"mutant" jsonschema:"candidate identifier"`
	AvgScore *float64 `json:"avg_score,omitempty" jsonschema:"candidate score; omit for unscored rows"`
}

// Input is the select_candidates argument object.
type Input struct {
	Candidates []Candidate       `json:"candidates" jsonschema:"scored candidates to select from"`
	Subset     bool              `json:"subset,omitempty" jsonschema:"return every kept candidate instead of one draw"`
	Options    *sampling.Options `json:"options,omitempty" jsonschema:"sampling options merged over the server defaults"`
}

// Output is the select_candidates result.
type Output struct {
	Policy    string   `json:"policy" jsonschema:"policy that made the selection"`
	Selected  []string `json:"selected" jsonschema:"selected mutants; top-k and mirostat list them best first, the other policies keep table order"`
	TableHash string   `json:"table_hash" jsonschema:"content hash of the input table"`
}

type handler struct {
	defaults sampling.Options
	logger   *zap.Logger
}

// NewServer creates an MCP server with the select_candidates tool. defaults
// sit beneath each call's options.
func NewServer(version string, defaults sampling.Options, logger *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "sieve", Version: version}, nil)

	h := &handler{defaults: defaults, logger: logger}
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: toolDescription,
	}, h.selectCandidates)

	return server
}

func (h *handler) selectCandidates(ctx context.Context, req *mcp.CallToolRequest, in Input) (*mcp.CallToolResult, Output, error) {
	if len(in.Candidates) == 0 {
		return nil, Output{}, errors.New("no candidates provided")
	}

	table := candidate.NewTable()
	for _, c := range in.Candidates {
		score := math.NaN()
		if c.AvgScore != nil {
			score = *c.AvgScore
		}
		table.Append(candidate.Candidate{Mutant: c.Mutant, AvgScore: score})
	}

	opts := h.defaults
	if in.Options != nil {
		opts = opts.Merge(*in.Options)
	}

	sel, err := sampling.NewSelectorFromOptions(opts, h.logger)
	if err != nil {
		return nil, Output{}, err
	}

	out := Output{
		Policy:    sel.Policy().Name(),
		TableHash: table.Hash(),
	}

	if in.Subset {
		kept, err := sel.Subset(table)
		if err != nil {
			return nil, Output{}, err
		}
		out.Selected = kept.Mutants()
	} else {
		mutant, err := sel.One(table)
		if err != nil {
			return nil, Output{}, err
		}
		out.Selected = []string{mutant}
	}

	h.logger.Debug("tool selection",
		zap.String("policy", out.Policy),
		zap.Int("candidates", table.Len()),
		zap.Int("selected", len(out.Selected)),
	)

	return nil, out, nil
}
