package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesdabbs/guard/config"
)

// NewShowCmd returns the command that prints the groups and plugins the
// guardfile declares, without starting the daemon.
func NewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the groups and plugins declared in the guardfile",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			fmt.Printf("guardfile: %s\n", guardfile)
			fmt.Printf("watch: %v\n", cfg.Watch)
			for _, g := range cfg.Groups {
				fmt.Printf("group %s:\n", g.Name)
				for _, p := range g.Plugins {
					if len(p.Patterns) > 0 {
						fmt.Printf("  %s (%s) patterns=%v\n", p.InstanceName(), p.Use, p.Patterns)
					} else {
						fmt.Printf("  %s (%s)\n", p.InstanceName(), p.Use)
					}
				}
			}
			return nil
		},
	}
}
