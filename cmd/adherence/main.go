// Command adherence tracks a 30-day health protocol from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/adherence/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
