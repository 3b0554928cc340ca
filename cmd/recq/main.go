// Command recq filters, searches, sorts, groups and pages record
// collections declared in CUE.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/recq/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// ExitErrors were already reported by the command
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
