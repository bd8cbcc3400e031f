// Package main is the single-binary entrypoint for noor.
package main

import "github.com/noor-reader/noor/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
