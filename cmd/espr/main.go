// Command espr is the Espressionist storefront client.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/espr/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// ExitErrors have already been reported by the command. Anything
		// else comes from cobra itself: unknown flags, wrong argument counts.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
