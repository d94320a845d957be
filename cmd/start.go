package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jamesdabbs/guard/command"
	"github.com/jamesdabbs/guard/config"
	"github.com/jamesdabbs/guard/internal/console"
	"github.com/jamesdabbs/guard/internal/notify"
	"github.com/jamesdabbs/guard/internal/session"
	"github.com/jamesdabbs/guard/internal/watcher"
	"github.com/jamesdabbs/guard/logging"
	"github.com/jamesdabbs/guard/plugin"
	"github.com/jamesdabbs/guard/plugin/shell"
)

// NewStartCmd returns the command that runs the daemon in the foreground.
func NewStartCmd() *cobra.Command {
	var (
		scopeTokens   []string
		noInteraction bool
		latencyMs     int
	)

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start watching and dispatching changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewLogger("guard")
			if verboseEnabled(cmd.Flags()) {
				logger.Logger.SetLevel(logrus.DebugLevel)
			}

			cwd, err := os.Getwd()
			if err != nil {
				return err
			}

			guardfile, err := guardfilePath(cmd, cwd)
			if err != nil {
				return err
			}

			cfg, err := config.Load(guardfile)
			if err != nil {
				return err
			}

			roots, err := cfg.ResolveWatchRoots(filepath.Dir(guardfile))
			if err != nil {
				return err
			}

			runner := command.NewRunner(cfg.DebugCommands)
			factories := plugin.FactoryMap{
				"shell": func(name string, options map[string]interface{}) (plugin.Plugin, error) {
					return shell.New(name, options, runner)
				},
			}

			evaluator := config.NewEvaluator(guardfile, factories)
			notifier := notify.New(cfg.NotifyEnabled())

			latency := time.Duration(cfg.DebounceMs) * time.Millisecond
			if latencyMs > 0 {
				latency = time.Duration(latencyMs) * time.Millisecond
			}

			coord, err := session.New(session.Options{
				Evaluator:    evaluator,
				Roots:        roots,
				Notifier:     notifier,
				InitialScope: scopeTokens,
				Subscribe: func(callback func(plugin.Batch)) (session.Subscription, error) {
					return watcher.New(watcher.Config{
						Roots:   roots,
						Ignores: cfg.Ignore,
						Latency: latency,
					}, callback)
				},
			})
			if err != nil {
				return err
			}

			if err := coord.Setup(); err != nil {
				return fmt.Errorf("setup failed: %w", err)
			}

			if !noInteraction {
				coord.AttachConsole(console.New(coord))
			}

			logger.WithField("guardfile", guardfile).Info("Starting guard")
			return coord.Start(context.Background())
		},
	}

	cmd.Flags().StringSliceVarP(&scopeTokens, "scope", "s", nil, "Restrict dispatch to the named groups/plugins")
	cmd.Flags().BoolVarP(&noInteraction, "no-interactions", "n", false, "Disable the interactive console")
	cmd.Flags().IntVar(&latencyMs, "latency", 0, "Override the change batching latency in milliseconds")

	return cmd
}
