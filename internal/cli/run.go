package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/starlane-io/starlane/internal/config"
	"github.com/starlane-io/starlane/internal/runner"
)

var runConfigPath string

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "path to config.toml (default $STARLANE_HOME/config.toml)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a star from its config",
	Long:  `Loads a StarConfig and runs the star until interrupted: its hyperlane listener, configured peer links, health checks, and HTTP observability surface.`,
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(runConfigPath)
	if err != nil {
		return ConfigError(fmt.Errorf("load config: %w", err))
	}

	rt, err := runner.New(cfg, rootCmd.Version, nil)
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("starlane: %s listening on %s\n", cfg.Star.Key(), cfg.Network.Listen)
	return rt.Serve(ctx)
}
