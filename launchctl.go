package launchagent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// Adapter is the narrow interface to the OS service manager and the
// helper processes the engine spawns. All calls are synchronous; a nil
// error means the underlying tool exited zero.
type Adapter interface {
	// Load asks the service manager to load the descriptor at path
	Load(ctx context.Context, descriptorPath string) error

	// Unload asks the service manager to unload the descriptor at path
	Unload(ctx context.Context, descriptorPath string) error

	// List returns the service manager's full listing as raw text
	List(ctx context.Context) (string, error)

	// Run executes a helper script, streaming its output to the operator
	Run(ctx context.Context, helperPath string, args ...string) error
}

// Launchctl is the Adapter backed by the launchctl command-line tool.
type Launchctl struct {
	// Path is the launchctl binary path
	Path string

	// Shell is the interpreter helper scripts are run with
	Shell string

	// Stdout receives streamed output from helper runs
	Stdout io.Writer

	// Stderr receives streamed error output from helper runs
	Stderr io.Writer
}

// NewLaunchctl creates a Launchctl with default settings
func NewLaunchctl() *Launchctl {
	return &Launchctl{
		Path:   DefaultLaunchctlPath,
		Shell:  DefaultShellPath,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// WithPath sets the launchctl binary path
func (l *Launchctl) WithPath(path string) *Launchctl {
	if path != "" {
		l.Path = path
	}
	return l
}

// WithShell sets the interpreter helper scripts are run with
func (l *Launchctl) WithShell(path string) *Launchctl {
	if path != "" {
		l.Shell = path
	}
	return l
}

// WithStreams sets the writers helper output is streamed to
func (l *Launchctl) WithStreams(stdout, stderr io.Writer) *Launchctl {
	l.Stdout = stdout
	l.Stderr = stderr
	return l
}

// execLaunchctl runs launchctl with the given arguments, capturing
// stdout and folding stderr into any returned error.
func (l *Launchctl) execLaunchctl(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, l.Path, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w (stderr: %s)", err, stderr.String())
	}

	return stdout.String(), nil
}

// Load asks launchd to load the descriptor at path
func (l *Launchctl) Load(ctx context.Context, descriptorPath string) error {
	_, err := l.execLaunchctl(ctx, "load", descriptorPath)
	return err
}

// Unload asks launchd to unload the descriptor at path
func (l *Launchctl) Unload(ctx context.Context, descriptorPath string) error {
	_, err := l.execLaunchctl(ctx, "unload", descriptorPath)
	return err
}

// List returns launchd's full service listing
func (l *Launchctl) List(ctx context.Context) (string, error) {
	return l.execLaunchctl(ctx, "list")
}

// Run executes a helper script through the configured shell, streaming
// its output to the configured writers.
func (l *Launchctl) Run(ctx context.Context, helperPath string, args ...string) error {
	cmd := exec.CommandContext(ctx, l.Shell, append([]string{helperPath}, args...)...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %s: %w", filepath.Base(helperPath), err)
	}
	return nil
}
