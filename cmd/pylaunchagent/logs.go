package main

import (
	"os"

	"github.com/spf13/cobra"
)

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Follow the service's log file",
	Long: `Logs streams the service's configured log file, printing new content
as the service writes it. The command runs until interrupted with
Ctrl-C.

The log file is the one named at install time with --logs, resolved
inside the service's staging directory. A file that does not exist yet
is waited for, so logs can be started before the service's first
write.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	return engine.Logs(cmd.Context(), cfg, os.Stdout)
}

func init() {
	rootCmd.AddCommand(logsCmd)
}
