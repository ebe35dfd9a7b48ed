package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	launchagent "github.com/axondata/go-launchagent"
)

// Exit codes for CLI commands
const (
	// ExitCodeSuccess indicates successful execution
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error
	ExitCodeError = 1
)

var (
	rootName    string
	rootTag     string
	rootVerbose bool
)

// rootCmd represents the base command for the pylaunchagent application
var rootCmd = &cobra.Command{
	Use:   "pylaunchagent",
	Short: "Install Python scripts as persistent macOS launch agents",
	Long: `pylaunchagent installs a Python script as a background service that
launchd keeps running and starts at login.

An install stages the script and its dependencies under
~/.pylaunchagent/<project>, provisions a virtual environment, and
registers a descriptor in ~/Library/LaunchAgents.

Every service is addressed by a (project, tag) pair. The project name
defaults to the working directory's name and the tag to "startup", so a
bare "pylaunchagent install" manages one well-known service per project.

When the working directory contains a pylaunchagent.yaml, its contents
fully determine the install and command-line flags are ignored for that
invocation.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

// Execute is the main entry point for the CLI application. It wires
// signal handling into the command context so a long-running logs
// follow ends cleanly on interrupt.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetVersionTemplate(`{{printf "pylaunchagent version %s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the exit code for a failed command. When the
// failure came from an external tool, its own exit status passes
// through.
func getExitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return ExitCodeError
}

// configureLogging installs the process-wide logger. Engine progress is
// logged at debug level, so the default warn threshold keeps normal
// runs quiet and --verbose turns on the step-by-step trail.
func configureLogging() {
	level := slog.LevelWarn
	if rootVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// cliValues assembles the resolver input from the bound flags
func cliValues() launchagent.CLI {
	return launchagent.CLI{
		Name:         rootName,
		Tag:          rootTag,
		Entrypoint:   installEntrypoint,
		Requirements: installRequirements,
		Modules:      installModules,
		Files:        installFiles,
		Logs:         installLogs,
		Plist:        installPlist,
	}
}

// resolveConfig resolves the effective config for the working directory
func resolveConfig() (*launchagent.InstallConfig, error) {
	return launchagent.Resolve(".", cliValues())
}

// newEngine creates the engine used by all subcommands
func newEngine() (*launchagent.Engine, error) {
	return launchagent.NewEngine()
}

func init() {
	rootCmd.Version = launchagent.Version

	rootCmd.PersistentFlags().StringVarP(&rootName, "name", "n", "", "project name (defaults to the working directory's name)")
	rootCmd.PersistentFlags().StringVarP(&rootTag, "tag", "t", "", `service tag (defaults to "startup")`)
	rootCmd.PersistentFlags().BoolVar(&rootVerbose, "verbose", false, "log each step of the operation")
}
