package launchagent

import "io/fs"

// Naming constants shared by identity derivation, the config resolver,
// and the descriptor generator.
const (
	// Namespace is the reverse-DNS-ish prefix of every service label
	Namespace = "pylaunchagent"

	// DefaultTag is the tag used when none is supplied, allowing a bare
	// "install" to address one well-known service per project
	DefaultTag = "startup"

	// DefaultEntrypoint is the script installed when -e is not given
	DefaultEntrypoint = "./main.py"

	// DefaultRequirements is the dependency manifest installed when -r is not given
	DefaultRequirements = "./requirements.txt"

	// ConfigFileName is the per-project config file looked up in the
	// working directory; when present it fully overrides CLI flags
	ConfigFileName = "pylaunchagent.yaml"
)

// Filesystem layout constants
const (
	// StateDirName is the app-state root under the user's home directory,
	// holding one staging subdirectory per project
	StateDirName = ".pylaunchagent"

	// AgentsDirName is the launchd user-agent registry, relative to home
	AgentsDirName = "Library/LaunchAgents"

	// DescriptorExt is the extension of registered descriptor files
	DescriptorExt = ".plist"

	// LockFileName is the advisory lock file inside the state root
	LockFileName = ".lock"

	// StagingSuffix marks the temporary directory a project is staged into
	// before being renamed to its final destination
	StagingSuffix = ".staging"

	// StagedEntrypoint is the canonical name of the copied entrypoint
	StagedEntrypoint = "entrypoint.py"

	// StagedRequirements is the canonical name of the copied manifest
	StagedRequirements = "requirements.txt"
)

// Helper script names. Both are embedded in the binary and staged at
// install time; an on-PATH copy takes precedence so packaged installs
// can override the bundled versions.
const (
	// RunScriptName is the launcher invoked by launchd via /bin/sh
	RunScriptName = "pylaunchagent_run"

	// ProvisionScriptName creates the virtual environment during install
	ProvisionScriptName = "pylaunchagent_install_venv"
)

// External tool paths with defaults that can be overridden
const (
	// DefaultShellPath is the interpreter recorded in ProgramArguments
	DefaultShellPath = "/bin/sh"

	// DefaultLaunchctlPath is the path to the launchctl binary
	DefaultLaunchctlPath = "launchctl"
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode fs.FileMode = 0o755

	// FileMode is the default mode for created files
	FileMode fs.FileMode = 0o644

	// ExecMode is the default mode for executable scripts
	ExecMode fs.FileMode = 0o755
)

// Op identifies an engine or adapter operation for error reporting
type Op int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Op = iota
	// OpResolve is configuration resolution
	OpResolve
	// OpInstall is the install lifecycle operation
	OpInstall
	// OpUninstall is the uninstall lifecycle operation
	OpUninstall
	// OpStatus is the read-only status query
	OpStatus
	// OpLogs is the log-following operation
	OpLogs
	// OpLoad asks the service manager to load a descriptor
	OpLoad
	// OpUnload asks the service manager to unload a descriptor
	OpUnload
	// OpList queries the service manager's full listing
	OpList
	// OpProvision runs the environment-provisioning helper
	OpProvision
)

// Op string constants
const (
	opUnknownStr   = "unknown"
	opResolveStr   = "resolve"
	opInstallStr   = "install"
	opUninstallStr = "uninstall"
	opStatusStr    = "status"
	opLogsStr      = "logs"
	opLoadStr      = "load"
	opUnloadStr    = "unload"
	opListStr      = "list"
	opProvisionStr = "provision"
)

// String returns the string representation of an Op
func (op Op) String() string {
	switch op {
	case OpResolve:
		return opResolveStr
	case OpInstall:
		return opInstallStr
	case OpUninstall:
		return opUninstallStr
	case OpStatus:
		return opStatusStr
	case OpLogs:
		return opLogsStr
	case OpLoad:
		return opLoadStr
	case OpUnload:
		return opUnloadStr
	case OpList:
		return opListStr
	case OpProvision:
		return opProvisionStr
	default:
		return opUnknownStr
	}
}
