package main

import (
	"fmt"
	"os"

	"github.com/terraincognita07/endocare/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "endocare:", err)
		os.Exit(1)
	}
}
