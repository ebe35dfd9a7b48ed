package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// uninstallCmd represents the uninstall command
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove an installed launch agent",
	Long: `Uninstall unloads the service, removes its descriptor from
~/Library/LaunchAgents, and deletes the staged files under
~/.pylaunchagent/<project>. The shared ~/.pylaunchagent directory is
removed once the last project is gone.

Uninstalling a service that is not installed is a no-op.`,
	Args: cobra.NoArgs,
	RunE: runUninstall,
}

func runUninstall(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	if err := engine.Uninstall(cmd.Context(), cfg); err != nil {
		return err
	}

	id := engine.Identity(cfg)
	fmt.Printf("uninstalled %s\n", id.ServiceName)
	return nil
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
