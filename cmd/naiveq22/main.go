// Command naiveq22 maintains the TPC-H Q22 aggregate view by full
// recomputation and reports per-handler cost.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/naiveq22/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
