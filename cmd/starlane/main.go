// Package main is the single-binary entrypoint for starlane.
package main

import "github.com/starlane-io/starlane/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
