// Package cli implements the starlane command-line interface using Cobra.
// Each subcommand maps to one of the external interfaces named in
// SPEC_FULL.md §6: run a star, open a terminal to one, print the build
// version, and manage named star contexts.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "starlane",
	Short: "starlane — a star in a distributed wave-routing fabric",
	Long: `starlane runs a star: a node that moves waves between particles
across a constellation of linked stars, speaking the hyperlane wire
protocol to its peers and exposing a registry-backed address space.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configErr marks an error as a configuration problem: exit code 1, per
// SPEC_FULL.md §6, as opposed to a runtime failure's exit code 2.
type configErr struct{ err error }

func (c configErr) Error() string { return c.err.Error() }
func (c configErr) Unwrap() error { return c.err }

// ConfigError wraps err so Execute reports it with exit code 1 instead of
// the default runtime-error code 2.
func ConfigError(err error) error {
	if err == nil {
		return nil
	}
	return configErr{err}
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var cfg configErr
		if errors.As(err, &cfg) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
