package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"github.com/spf13/cobra"

	"github.com/stackb/thrift-deps/pkg/address"
	"github.com/stackb/thrift-deps/pkg/resolver"
)

type depsOptions struct {
	explain bool
}

func newDepsCommand(root *rootOptions) *cobra.Command {
	opts := &depsOptions{}

	cmd := &cobra.Command{
		Use:   "deps [ADDRESS...]",
		Short: "Print the inferred dependencies of thrift file targets",
		Long: `Print the inferred dependencies of the given file targets, or of every file
target when none is given.  Addresses are relative to the workspace root, e.g.
src/thrift/foo.thrift or src/thrift/foo.thrift:lib.

Ambiguous includes are reported as warnings on stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.newSession(cmd)
			if err != nil {
				return err
			}
			snap, err := s.scan(cmd.Context())
			if err != nil {
				return err
			}

			var results []*resolver.InferResult
			if len(args) == 0 {
				all, err := s.engine.All(cmd.Context(), snap)
				if err != nil {
					return err
				}
				for _, t := range snap.Targets() {
					results = append(results, all[t.Address])
				}
			} else {
				for _, arg := range args {
					addr, err := snap.ResolveAddress(arg)
					if err != nil {
						return err
					}
					result, err := s.engine.Dependencies(cmd.Context(), snap, addr)
					if err != nil {
						return err
					}
					results = append(results, result)
				}
			}

			out := cmd.OutOrStdout()
			for _, result := range results {
				if opts.explain {
					t, _ := snap.Target(result.From)
					err = writeExplanation(out, result, sourceName(t.Address, t.File()))
				} else {
					err = writeDeps(out, result)
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.explain, "explain", false, "print a BUILD stanza annotated with the resolution of each include")

	return cmd
}

func writeDeps(out io.Writer, result *resolver.InferResult) error {
	if _, err := fmt.Fprintln(out, result.From); err != nil {
		return err
	}
	for _, dep := range result.Dependencies {
		if _, err := fmt.Fprintf(out, "  %s\n", dep); err != nil {
			return err
		}
	}
	return nil
}

// writeExplanation renders the result as a thrift_source stanza listing the
// inferred dependencies, with one comment per include describing how it was
// resolved.
func writeExplanation(out io.Writer, result *resolver.InferResult, source string) error {
	deps := make([]build.Expr, len(result.Dependencies))
	for i, dep := range result.Dependencies {
		deps[i] = &build.StringExpr{Value: dep.String()}
	}
	call := &build.CallExpr{
		X: &build.Ident{Name: "thrift_source"},
		List: []build.Expr{
			&build.AssignExpr{
				LHS: &build.Ident{Name: "name"},
				Op:  "=",
				RHS: &build.StringExpr{Value: stanzaName(result.From)},
			},
			&build.AssignExpr{
				LHS: &build.Ident{Name: "source"},
				Op:  "=",
				RHS: &build.StringExpr{Value: source},
			},
			&build.AssignExpr{
				LHS: &build.Ident{Name: "dependencies"},
				Op:  "=",
				RHS: &build.ListExpr{List: deps, ForceMultiLine: len(deps) > 0},
			},
		},
		ForceMultiLine: true,
	}
	result.Imports.Annotate(call.Comment(), func(*resolver.Import) bool {
		return true
	})

	f := &build.File{
		Path: result.From.Filename(),
		Type: build.TypeBuild,
		Stmt: []build.Expr{call},
	}
	if _, err := fmt.Fprintf(out, "# %s\n", result.From); err != nil {
		return err
	}
	_, err := out.Write(build.Format(f))
	return err
}

func stanzaName(addr address.Address) string {
	if addr.RelativeFilePath == "" {
		return addr.Name()
	}
	return addr.RelativeFilePath
}

// sourceName returns the file relative to the BUILD file of the target.
func sourceName(addr address.Address, file string) string {
	if addr.SpecPath == "" {
		return file
	}
	return strings.TrimPrefix(file, addr.SpecPath+"/")
}
