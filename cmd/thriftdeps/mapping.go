package main

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/stackb/thrift-deps/pkg/protobuf"
	"github.com/stackb/thrift-deps/pkg/resolver"
)

type mappingOptions struct {
	json  bool
	debug bool
}

func newMappingCommand(root *rootOptions) *cobra.Command {
	opts := &mappingOptions{}

	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Print the owner of every thrift path",
		Long: `Print each logical path (the file path relative to its source root) with the
target that owns it.  Paths owned by more than one target are listed with all
of their candidates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.newSession(cmd)
			if err != nil {
				return err
			}
			snap, err := s.scan(cmd.Context())
			if err != nil {
				return err
			}
			m, err := s.engine.Mapping(cmd.Context(), snap)
			if err != nil {
				return err
			}
			if opts.debug {
				spew.Fdump(cmd.ErrOrStderr(), m.Mapping(), m.AmbiguousModules())
			}
			if opts.json {
				encoded, err := protobuf.EncodeMapping(snap.Digest(), m)
				if err != nil {
					return err
				}
				return protobuf.WriteStableJSON(cmd.OutOrStdout(), encoded)
			}
			return writeMapping(cmd.OutOrStdout(), m)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the mapping as JSON, as stored in the cache file")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "dump the mapping structures to stderr")

	return cmd
}

func writeMapping(out io.Writer, m *resolver.ThriftMapping) error {
	owners := m.Mapping()
	ambiguous := m.AmbiguousModules()
	for _, p := range m.Paths() {
		if owner, ok := owners[p]; ok {
			if _, err := fmt.Fprintf(out, "%s %s\n", p, owner); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(out, "%s (ambiguous)\n", p); err != nil {
			return err
		}
		for _, addr := range ambiguous[p] {
			if _, err := fmt.Fprintf(out, "  %s\n", addr); err != nil {
				return err
			}
		}
	}
	return nil
}
