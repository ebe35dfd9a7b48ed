// Package launchagent installs user-authored Python scripts as
// persistent launchd agents on macOS.
//
// An install resolves configuration from the command line or a
// pylaunchagent.yaml file, stages the script with its dependencies
// under ~/.pylaunchagent/<project>, provisions a virtual environment,
// registers a descriptor in ~/Library/LaunchAgents, and asks launchd to
// load it:
//
//	cfg, err := launchagent.Resolve(".", launchagent.CLI{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, err := launchagent.NewEngine()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := engine.Install(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration Resolution
//
// Precedence is all-or-nothing: when the working directory contains a
// pylaunchagent.yaml, its contents fully determine the install and
// command-line values are ignored for that invocation. There is no
// field-by-field merge. Without a config file, command-line values plus
// built-in defaults apply.
//
// # Service Identity
//
// Every service is addressed by a (project, tag) pair. The pair derives
// a stable launchd label, descriptor path, and staging directory:
//
//	id := launchagent.DeriveIdentity("demo", "startup", stateRoot, agentsDir)
//	fmt.Println(id.ServiceName) // pylaunchagent.startup.demo
//
// Two installs sharing a pair address the same service, and no two
// pairs share a label or descriptor path. The staging directory is
// keyed on the project alone: a project's tags share one staged tree,
// owned by whichever install ran last.
//
// # Lifecycle
//
// Install is idempotent: it removes any prior state for the identity
// first, so the result is a pure function of the resolved config.
// Uninstall tolerates any partial state: every removal is
// existence-guarded and a second uninstall in a row is a clean no-op.
// Mutating operations take
// an advisory lock inside the state root, so concurrent invocations
// serialize instead of interleaving destructively.
//
// The service manager and helper processes sit behind the Adapter
// interface; NewLaunchctl returns the launchctl-backed implementation
// used in production, and tests substitute their own.
package launchagent
