// Command suiql runs SQL-like queries against Sui fullnodes.
package main

import (
	"fmt"
	"os"

	"github.com/sand-worm-labs/sandworm-sui-ql/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
