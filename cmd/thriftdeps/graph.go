package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/depgraph"
)

type graphOptions struct {
	format      string
	failOnCycle bool
}

func newGraphCommand(root *rootOptions) *cobra.Command {
	opts := &graphOptions{format: "labels"}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the dependency graph of the workspace",
		Long: `Print the graph of all thrift targets.  Edges are the inferred dependencies,
the explicit entries of dependencies fields and the links from each
thrift_sources target to the file targets it generates.

Formats:
  labels  one line per target in dependency order: its label, then the
          labels of its dependencies
  dot     graphviz
  json    {"nodes": [...], "edges": [{"from", "to", "kind"}]}

Cycles are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			write, err := graphWriter(opts.format)
			if err != nil {
				return err
			}
			s, err := root.newSession(cmd)
			if err != nil {
				return err
			}
			snap, err := s.scan(cmd.Context())
			if err != nil {
				return err
			}
			results, err := s.engine.All(cmd.Context(), snap)
			if err != nil {
				return err
			}
			g, err := depgraph.Build(snap, results)
			if err != nil {
				return err
			}

			cycles, err := g.Cycles()
			if err != nil {
				return err
			}
			for _, cycle := range cycles {
				s.logger.Warn().Str("cycle", formatCycle(cycle)).Msg("dependency cycle")
			}
			if len(cycles) > 0 && opts.failOnCycle {
				return fmt.Errorf("%d dependency cycle(s) found", len(cycles))
			}

			return write(g, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", opts.format, "output format: labels, dot or json")
	cmd.Flags().BoolVar(&opts.failOnCycle, "fail_on_cycle", false, "exit with an error if the graph has a cycle")

	return cmd
}

func graphWriter(format string) (func(*depgraph.Graph, *cobra.Command) error, error) {
	switch format {
	case "labels":
		return func(g *depgraph.Graph, cmd *cobra.Command) error {
			return g.WriteLabels(cmd.OutOrStdout())
		}, nil
	case "dot":
		return func(g *depgraph.Graph, cmd *cobra.Command) error {
			return g.WriteDOT(cmd.OutOrStdout())
		}, nil
	case "json":
		return func(g *depgraph.Graph, cmd *cobra.Command) error {
			return g.WriteJSON(cmd.OutOrStdout())
		}, nil
	default:
		return nil, fmt.Errorf("--format: unknown format %q (want labels, dot or json)", format)
	}
}

func formatCycle(cycle []address.Address) string {
	parts := make([]string, len(cycle))
	for i, addr := range cycle {
		parts[i] = addr.String()
	}
	return strings.Join(parts, ", ")
}
