package main

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	launchagent "github.com/axondata/go-launchagent"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the launch agent's current state",
	Long: `Status reports whether the service is staged, registered, and known to
launchd, along with its PID and last exit status when loaded. The
runtime columns pass through whatever launchctl reports.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	engine, err := newEngine()
	if err != nil {
		return err
	}

	st, err := engine.Status(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	renderStatus(st)
	return nil
}

// renderStatus prints one status row for the queried identity
func renderStatus(st *launchagent.Status) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"SERVICE", "STATE", "PID", "LAST EXIT", "STAGED", "REGISTERED"})
	t.AppendRow(table.Row{
		st.Identity.ServiceName,
		stateString(st),
		pidString(st),
		lastExitString(st),
		yesNo(st.Staged),
		yesNo(st.Registered),
	})
	t.Render()
}

// stateString summarizes a status as one word
func stateString(st *launchagent.Status) string {
	switch {
	case st.Running():
		return "running"
	case st.Loaded:
		return "loaded"
	case st.Registered:
		return "stopped"
	case st.Staged:
		return "staged"
	default:
		return "not installed"
	}
}

func pidString(st *launchagent.Status) string {
	if st.PID > 0 {
		return strconv.Itoa(st.PID)
	}
	return "-"
}

func lastExitString(st *launchagent.Status) string {
	if !st.Loaded {
		return "-"
	}
	return strconv.Itoa(st.LastExitStatus)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
