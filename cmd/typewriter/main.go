// Command typewriter plays, simulates and inspects typewriter animations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/typewriter/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
