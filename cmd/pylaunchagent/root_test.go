package main

import (
	"errors"
	"fmt"
	"os/exec"
	"testing"

	launchagent "github.com/axondata/go-launchagent"
)

func TestGetExitCode(t *testing.T) {
	if got := getExitCode(errors.New("boom")); got != ExitCodeError {
		t.Errorf("getExitCode = %d, want %d", got, ExitCodeError)
	}

	wrapped := &launchagent.OpError{Op: launchagent.OpInstall, Path: "svc", Err: errors.New("boom")}
	if got := getExitCode(wrapped); got != ExitCodeError {
		t.Errorf("getExitCode = %d, want %d", got, ExitCodeError)
	}
}

func TestGetExitCodePassesThroughToolExit(t *testing.T) {
	err := exec.Command("/bin/sh", "-c", "exit 7").Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("running shell: %v", err)
	}

	chained := &launchagent.OpError{
		Op:   launchagent.OpProvision,
		Path: "svc",
		Err:  fmt.Errorf("running helper: %w", err),
	}
	if got := getExitCode(chained); got != 7 {
		t.Errorf("getExitCode = %d, want 7", got)
	}
}

func TestCLIValues(t *testing.T) {
	saved := cliValues()
	t.Cleanup(func() {
		rootName, rootTag = saved.Name, saved.Tag
		installEntrypoint, installRequirements = saved.Entrypoint, saved.Requirements
		installModules, installFiles = saved.Modules, saved.Files
		installLogs, installPlist = saved.Logs, saved.Plist
	})

	want := launchagent.CLI{
		Name:         "sensor",
		Tag:          "beta",
		Entrypoint:   "run.py",
		Requirements: "reqs.txt",
		Modules:      "lib,utils",
		Files:        "data.json",
		Logs:         "out.log",
		Plist:        "custom.plist",
	}
	rootName, rootTag = want.Name, want.Tag
	installEntrypoint, installRequirements = want.Entrypoint, want.Requirements
	installModules, installFiles = want.Modules, want.Files
	installLogs, installPlist = want.Logs, want.Plist

	if got := cliValues(); got != want {
		t.Errorf("cliValues = %+v, want %+v", got, want)
	}
}
