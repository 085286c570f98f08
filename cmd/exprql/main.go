// Command exprql renders typed expression trees as dialect-specific query
// text with ordered constants.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/exprql/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands report their own errors; only flag and argument
		// errors from cobra still need printing.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
