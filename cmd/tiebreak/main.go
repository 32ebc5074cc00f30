// Command tiebreak runs Swiss tournaments from the command line or as an
// HTTP service.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tiebreak/internal/cli"
	"github.com/roach88/tiebreak/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(cli.ExitCommandError)
	}
	os.Exit(cli.Run(cfg, os.Args[1:], os.Stdout, os.Stderr))
}
