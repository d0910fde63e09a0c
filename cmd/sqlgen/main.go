package main

import (
	"fmt"
	"os"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sqlgen:", err)
		os.Exit(1)
	}
}
