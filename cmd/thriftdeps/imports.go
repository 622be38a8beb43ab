package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stackb/thrift-deps/pkg/thriftparse"
)

func newImportsCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "imports FILE...",
		Short: "Print the include paths of thrift files",
		Long: `Print the include paths of each file, one per line and indented under the
file name, in the order they appear.  Files need not belong to a target.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, filename := range args {
				data, err := os.ReadFile(filename)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, filename)
				for _, imp := range thriftparse.ParseImports(string(data)) {
					fmt.Fprintln(out, "  "+imp)
				}
			}
			return nil
		},
	}
}
