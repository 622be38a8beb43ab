// thriftdeps infers the dependencies between thrift targets from their
// include statements.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
