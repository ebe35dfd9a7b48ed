package launchagent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CLI carries the raw command-line values of one invocation. Multi-item
// fields hold the comma-separated form; Resolve splits them.
type CLI struct {
	// Name overrides the project name
	Name string
	// Tag overrides the service tag
	Tag string
	// Entrypoint is the script to install
	Entrypoint string
	// Requirements is the dependency manifest
	Requirements string
	// Modules is a comma-separated list of directories to stage
	Modules string
	// Files is a comma-separated list of files to stage
	Files string
	// Logs is the log file consumed by the logs operation
	Logs string
	// Plist is a user-authored descriptor used verbatim
	Plist string
}

// InstallConfig is the canonical resolved configuration of one
// invocation. It is constructed fresh each run and never persisted; the
// durable state is the staged tree and the registered descriptor.
type InstallConfig struct {
	// Project is the project name, the first identity component
	Project string
	// Tag distinguishes multiple services of one project
	Tag string
	// Entrypoint is the script the service runs
	Entrypoint string
	// Requirements is the dependency manifest provisioned at install time
	Requirements string
	// Modules are directories staged alongside the entrypoint
	Modules []string
	// Files are extra files staged alongside the entrypoint
	Files []string
	// LogsFilename is the log file consumed by the logs operation,
	// relative to the staging directory unless absolute
	LogsFilename string
	// DescriptorOverride is a user-authored descriptor path; when set,
	// descriptor generation is bypassed entirely
	DescriptorOverride string
	// Options are the boolean service options in configured order
	Options []OptionValue
}

// fileConfig mirrors the on-disk config file. Options is kept as a raw
// node so mapping order survives decoding.
type fileConfig struct {
	Name         string     `yaml:"name"`
	Tag          string     `yaml:"tag"`
	Entrypoint   string     `yaml:"entrypoint"`
	Requirements string     `yaml:"requirements"`
	Modules      stringList `yaml:"modules"`
	Files        stringList `yaml:"files"`
	Logs         string     `yaml:"logs"`
	Plist        string     `yaml:"plist"`
	Options      yaml.Node  `yaml:"options"`
}

// Resolve merges the config file, CLI values, and built-in defaults into
// one InstallConfig. Precedence is all-or-nothing: when dir contains a
// pylaunchagent.yaml its contents fully determine the result and cli is
// ignored; otherwise the result is built from cli plus defaults. Missing
// source files are not an error here; existence is checked when the
// engine consumes the paths.
func Resolve(dir string, cli CLI) (*InstallConfig, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &OpError{Op: OpResolve, Path: dir, Err: err}
	}

	cfgPath := filepath.Join(abs, ConfigFileName)
	data, err := os.ReadFile(cfgPath)
	switch {
	case err == nil:
		return resolveFile(abs, cfgPath, data)
	case errors.Is(err, os.ErrNotExist):
		return resolveCLI(abs, cli), nil
	default:
		return nil, &OpError{Op: OpResolve, Path: cfgPath, Err: err}
	}
}

// resolveCLI builds the config from command-line values plus defaults.
func resolveCLI(dir string, cli CLI) *InstallConfig {
	cfg := &InstallConfig{
		Project:            cli.Name,
		Tag:                cli.Tag,
		Entrypoint:         cli.Entrypoint,
		Requirements:       cli.Requirements,
		Modules:            splitList(cli.Modules),
		Files:              splitList(cli.Files),
		LogsFilename:       cli.Logs,
		DescriptorOverride: cli.Plist,
	}
	applyDefaults(cfg, dir)
	return cfg
}

// resolveFile builds the config from the parsed config file plus
// defaults. CLI values play no part on this path.
func resolveFile(dir, cfgPath string, data []byte) (*InstallConfig, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, &OpError{Op: OpResolve, Path: cfgPath, Err: err}
	}

	opts, err := parseOptions(&fc.Options)
	if err != nil {
		return nil, &OpError{Op: OpResolve, Path: cfgPath, Err: err}
	}

	cfg := &InstallConfig{
		Project:            fc.Name,
		Tag:                fc.Tag,
		Entrypoint:         fc.Entrypoint,
		Requirements:       fc.Requirements,
		Modules:            fc.Modules,
		Files:              fc.Files,
		LogsFilename:       fc.Logs,
		DescriptorOverride: fc.Plist,
		Options:            opts,
	}
	applyDefaults(cfg, dir)
	return cfg, nil
}

// applyDefaults fills the fields neither source supplied.
func applyDefaults(cfg *InstallConfig, dir string) {
	if cfg.Project == "" {
		cfg.Project = filepath.Base(dir)
	}
	if cfg.Tag == "" {
		cfg.Tag = DefaultTag
	}
	if cfg.Entrypoint == "" {
		cfg.Entrypoint = DefaultEntrypoint
	}
	if cfg.Requirements == "" {
		cfg.Requirements = DefaultRequirements
	}
	if cfg.Options == nil {
		cfg.Options = DefaultOptions()
	}
}

// parseOptions converts the raw options node into ordered OptionValues.
// An absent node yields the defaults. Unknown option names are rejected,
// and every offending name is reported.
func parseOptions(node *yaml.Node) ([]OptionValue, error) {
	if node.Kind == 0 {
		return DefaultOptions(), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.New("options must be a mapping of option name to boolean")
	}

	var errs MultiError
	opts := make([]OptionValue, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, ok := optionCatalog[name]; !ok {
			errs.Add(fmt.Errorf("%w: %q", ErrUnknownOption, name))
			continue
		}
		var enabled bool
		if err := node.Content[i+1].Decode(&enabled); err != nil {
			errs.Add(fmt.Errorf("option %q: %w", name, err))
			continue
		}
		opts = append(opts, OptionValue{Name: name, Enabled: enabled})
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}
	return opts, nil
}

// stringList accepts either a YAML sequence of paths or a single
// comma-separated scalar.
type stringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = splitList(node.Value)
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			var s string
			if err := item.Decode(&s); err != nil {
				return err
			}
			if s = strings.TrimSpace(s); s != "" {
				items = append(items, filepath.Clean(s))
			}
		}
		*l = items
		return nil
	default:
		return errors.New("expected a sequence or a comma-separated string")
	}
}

// splitList splits a comma-separated value into cleaned paths. Empty
// segments are dropped.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, filepath.Clean(p))
		}
	}
	return out
}
