package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/papercheck/papercheck/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// A failed report already printed itself; only real errors need output.
		if !errors.Is(err, cli.ErrChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
