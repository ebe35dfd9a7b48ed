package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	installEntrypoint   string
	installRequirements string
	installModules      string
	installFiles        string
	installLogs         string
	installPlist        string
)

// installCmd represents the install command
var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the current project as a launch agent",
	Long: `Install stages the entrypoint, requirements manifest, and any extra
modules and files under ~/.pylaunchagent/<project>, provisions a
virtual environment there, registers the service descriptor, and asks
launchd to load it.

A prior install of the same (project, tag) service is removed first, so
installing again always reflects the current configuration.

Examples:
  pylaunchagent install
  pylaunchagent install -e ./bot.py -r ./requirements.txt -l bot.log
  pylaunchagent install -t worker -m ./lib,./vendor -f ./config.json`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	if err := engine.Install(cmd.Context(), cfg); err != nil {
		return err
	}

	id := engine.Identity(cfg)
	fmt.Printf("installed %s\n", id.ServiceName)
	return nil
}

func init() {
	rootCmd.AddCommand(installCmd)

	installCmd.Flags().StringVarP(&installEntrypoint, "entrypoint", "e", "", "script to run (default ./main.py)")
	installCmd.Flags().StringVarP(&installRequirements, "requirements", "r", "", "dependency manifest (default ./requirements.txt)")
	installCmd.Flags().StringVarP(&installModules, "modules", "m", "", "comma-separated directories to stage alongside the entrypoint")
	installCmd.Flags().StringVarP(&installFiles, "files", "f", "", "comma-separated files to stage alongside the entrypoint")
	installCmd.Flags().StringVarP(&installLogs, "logs", "l", "", "log file the service writes, shown by the logs command")
	installCmd.Flags().StringVarP(&installPlist, "plist", "p", "", "user-authored descriptor to register verbatim")
}
