package launchagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/axondata/go-launchagent/internal/lockfile"
)

// Engine orchestrates the install, uninstall, status, and logs
// operations for resolved configurations. It owns the two filesystem
// namespaces, the per-project staging tree under the state root and the
// descriptor registry, and talks to the service manager through an
// Adapter. Mutating operations are serialized across processes by an
// advisory lock inside the state root.
type Engine struct {
	// StateRoot is the shared app-state directory, one subdirectory per project
	StateRoot string

	// AgentsDir is the service manager's descriptor registry
	AgentsDir string

	// BaseDir is the directory relative source paths resolve against
	BaseDir string

	// HelperDir optionally pins helper-script resolution to one directory
	HelperDir string

	// ShellPath is the interpreter recorded in generated descriptors
	ShellPath string

	// Adapter is the service-manager and helper-process interface
	Adapter Adapter

	// Logger receives progress events
	Logger *slog.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithStateRoot overrides the app-state root directory
func WithStateRoot(dir string) Option {
	return func(e *Engine) {
		e.StateRoot = dir
	}
}

// WithAgentsDir overrides the descriptor registry directory
func WithAgentsDir(dir string) Option {
	return func(e *Engine) {
		e.AgentsDir = dir
	}
}

// WithBaseDir sets the directory relative source paths resolve against
func WithBaseDir(dir string) Option {
	return func(e *Engine) {
		e.BaseDir = dir
	}
}

// WithHelperDir pins helper-script resolution to the given directory
func WithHelperDir(dir string) Option {
	return func(e *Engine) {
		e.HelperDir = dir
	}
}

// WithShellPath sets the shell interpreter recorded in descriptors
func WithShellPath(path string) Option {
	return func(e *Engine) {
		e.ShellPath = path
	}
}

// WithAdapter sets the service-manager adapter
func WithAdapter(a Adapter) Option {
	return func(e *Engine) {
		e.Adapter = a
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.Logger = logger
	}
}

// NewEngine creates an Engine rooted at the current user's home
// directory with a launchctl-backed adapter, then applies any options.
func NewEngine(opts ...Option) (*Engine, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	e := &Engine{
		StateRoot: filepath.Join(home, StateDirName),
		AgentsDir: filepath.Join(home, AgentsDirName),
		BaseDir:   wd,
		ShellPath: DefaultShellPath,
		Adapter:   NewLaunchctl(),
		Logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Identity derives the service identity for cfg against the engine's
// configured directories.
func (e *Engine) Identity(cfg *InstallConfig) Identity {
	return DeriveIdentity(cfg.Project, cfg.Tag, e.StateRoot, e.AgentsDir)
}

// Install transitions the identity to the installed state. Any prior
// install of the same identity is removed first, so the result is a
// pure function of cfg and never accretes stale files. Sources are
// staged into a temporary sibling of the destination directory that is
// renamed into place only once fully populated; a failed install never
// leaves a half-written destination. After staging, the descriptor is
// registered, the environment helper provisions the staged tree, and
// the service manager is asked to load the descriptor.
func (e *Engine) Install(ctx context.Context, cfg *InstallConfig) error {
	id := e.Identity(cfg)

	lock, err := e.lock()
	if err != nil {
		return &OpError{Op: OpInstall, Path: id.ServiceName, Err: err}
	}
	defer lock.Release()

	if err := e.removeProject(ctx, id); err != nil {
		return &OpError{Op: OpInstall, Path: id.ServiceName, Err: err}
	}

	if err := e.stage(cfg, id); err != nil {
		return &OpError{Op: OpInstall, Path: id.ServiceName, Err: err}
	}

	if err := e.register(cfg, id); err != nil {
		return &OpError{Op: OpInstall, Path: id.ServiceName, Err: err}
	}

	if err := e.provision(ctx, id); err != nil {
		return err
	}

	e.Logger.Debug("loading service", "descriptor", id.DescriptorPath)
	if err := e.Adapter.Load(ctx, id.DescriptorPath); err != nil {
		return &OpError{Op: OpLoad, Path: id.DescriptorPath, Err: err}
	}

	e.Logger.Info("service installed", "service", id.ServiceName, "dest", id.DestDir)
	return nil
}

// Uninstall transitions the identity to the absent state, safely as a
// no-op when nothing is installed. Every removal is existence-guarded,
// so partial prior state, such as a descriptor without a staged tree,
// is still cleaned and a second uninstall in a row raises no error. The
// shared state root is removed only when the last project's staging
// directory is gone.
func (e *Engine) Uninstall(ctx context.Context, cfg *InstallConfig) error {
	id := e.Identity(cfg)

	lock, err := e.lock()
	if err != nil {
		return &OpError{Op: OpUninstall, Path: id.ServiceName, Err: err}
	}
	defer lock.Release()

	if err := e.removeProject(ctx, id); err != nil {
		return &OpError{Op: OpUninstall, Path: id.ServiceName, Err: err}
	}

	if err := e.cleanupRoot(); err != nil {
		return &OpError{Op: OpUninstall, Path: id.ServiceName, Err: err}
	}

	e.Logger.Info("service uninstalled", "service", id.ServiceName)
	return nil
}

// Status reports the staged, registered, and runtime state of the
// identity. The runtime fields pass through whatever the service
// manager's listing reports. Status takes no lock; the answer is
// advisory by nature.
func (e *Engine) Status(ctx context.Context, cfg *InstallConfig) (*Status, error) {
	id := e.Identity(cfg)

	st := &Status{Identity: id, PID: -1}

	if _, err := os.Stat(id.DestDir); err == nil {
		st.Staged = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, &OpError{Op: OpStatus, Path: id.DestDir, Err: err}
	}

	if _, err := os.Stat(id.DescriptorPath); err == nil {
		st.Registered = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, &OpError{Op: OpStatus, Path: id.DescriptorPath, Err: err}
	}

	listing, err := e.Adapter.List(ctx)
	if err != nil {
		return nil, &OpError{Op: OpList, Path: id.ServiceName, Err: err}
	}
	if entry, ok := FindService(listing, id.ServiceName); ok {
		st.Loaded = true
		st.PID = entry.PID
		st.LastExitStatus = entry.LastExitStatus
	}

	return st, nil
}

// Logs streams the service's log file to w until ctx is canceled.
// The configured log path resolves against the staging directory.
// Content appended while streaming is delivered as it appears; when the
// file does not exist yet the stream waits for it to be created.
func (e *Engine) Logs(ctx context.Context, cfg *InstallConfig, w io.Writer) error {
	id := e.Identity(cfg)

	if cfg.LogsFilename == "" {
		return &OpError{Op: OpLogs, Path: id.ServiceName, Err: ErrNoLogFile}
	}

	path := id.LogPath(cfg.LogsFilename)
	e.Logger.Debug("following log file", "path", path)

	if err := TailFile(ctx, path, w); err != nil {
		return &OpError{Op: OpLogs, Path: path, Err: err}
	}
	return nil
}

// lock serializes mutating operations across processes. The state root
// is created first so the lock file has a home.
func (e *Engine) lock() (*lockfile.Lock, error) {
	if err := os.MkdirAll(e.StateRoot, DirMode); err != nil {
		return nil, fmt.Errorf("creating state root: %w", err)
	}
	return lockfile.Acquire(filepath.Join(e.StateRoot, LockFileName))
}

// removeProject clears the staged tree and registered descriptor for
// id. The service manager is asked to unload before the descriptor is
// removed; an unload failure is logged and tolerated since the service
// may simply not be loaded.
func (e *Engine) removeProject(ctx context.Context, id Identity) error {
	for _, dir := range []string{id.StagingDir(), id.DestDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
	}

	if _, err := os.Stat(id.DescriptorPath); err == nil {
		if err := e.Adapter.Unload(ctx, id.DescriptorPath); err != nil {
			e.Logger.Warn("unload failed", "service", id.ServiceName, "error", err)
		}
		if err := os.Remove(id.DescriptorPath); err != nil {
			return fmt.Errorf("removing descriptor: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking descriptor: %w", err)
	}

	return nil
}

// cleanupRoot removes the shared state root once the last project is
// gone. The root counts as empty when nothing but the lock file
// remains; any other entry, including a sibling project's staging
// directory, keeps it alive. Runs under the advisory lock, whose file
// is unlinked as the final act; lock acquisition re-checks the path, so
// a waiting process starts over on a fresh root.
func (e *Engine) cleanupRoot() error {
	entries, err := os.ReadDir(e.StateRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading state root: %w", err)
	}

	for _, entry := range entries {
		if entry.Name() != LockFileName {
			return nil
		}
	}

	if err := os.Remove(filepath.Join(e.StateRoot, LockFileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing lock file: %w", err)
	}
	if err := os.Remove(e.StateRoot); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing state root: %w", err)
	}

	e.Logger.Debug("removed state root", "dir", e.StateRoot)
	return nil
}

// stage populates the staging directory and renames it into place. On
// failure the staging directory is removed again, so aborted installs
// leave neither a destination nor a half-populated sibling behind.
func (e *Engine) stage(cfg *InstallConfig, id Identity) error {
	staging := id.StagingDir()
	if err := os.MkdirAll(staging, DirMode); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}

	if err := stageSources(cfg, e.BaseDir, staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	for _, name := range []string{RunScriptName, ProvisionScriptName} {
		if err := stageHelper(e.HelperDir, name, staging); err != nil {
			os.RemoveAll(staging)
			return err
		}
	}

	if err := os.Rename(staging, id.DestDir); err != nil {
		os.RemoveAll(staging)
		return fmt.Errorf("renaming staging into place: %w", err)
	}

	e.Logger.Debug("staged project", "dir", id.DestDir)
	return nil
}

// register renders the descriptor and writes it into the agents
// directory, creating the directory on first use.
func (e *Engine) register(cfg *InstallConfig, id Identity) error {
	resolved := *cfg
	if resolved.DescriptorOverride != "" {
		resolved.DescriptorOverride = absAgainst(e.BaseDir, resolved.DescriptorOverride)
	}

	doc, err := GenerateDescriptor(&resolved, id, e.ShellPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(e.AgentsDir, DirMode); err != nil {
		return fmt.Errorf("creating agents directory: %w", err)
	}
	if err := renameio.WriteFile(id.DescriptorPath, []byte(doc), FileMode); err != nil {
		return fmt.Errorf("writing descriptor: %w", err)
	}

	e.Logger.Debug("registered descriptor", "path", id.DescriptorPath)
	return nil
}

// provision runs the staged environment helper against the destination
// directory. It runs after the rename: the virtual environment embeds
// absolute paths and must see its final location.
func (e *Engine) provision(ctx context.Context, id Identity) error {
	helper := filepath.Join(id.DestDir, ProvisionScriptName)
	e.Logger.Debug("provisioning environment", "helper", helper)

	if err := e.Adapter.Run(ctx, helper, id.DestDir); err != nil {
		return &OpError{Op: OpProvision, Path: helper, Err: err}
	}
	return nil
}
