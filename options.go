package launchagent

import (
	"fmt"
	"sort"
	"strings"
)

// OptionValue is one boolean service option with its resolved value.
// Order is significant: the resolver preserves the order options were
// supplied in, so rendered descriptors stay byte-stable across runs.
type OptionValue struct {
	// Name is the logical option name, for example "keep_alive"
	Name string
	// Enabled is the resolved boolean value
	Enabled bool
}

// optionEntry pairs a logical option name with its descriptor key and
// nesting depth.
type optionEntry struct {
	key   string
	depth int
}

// optionCatalog is the fixed set of recognized boolean options.
var optionCatalog = map[string]optionEntry{
	"keep_alive":  {key: "KeepAlive", depth: 1},
	"run_at_load": {key: "RunAtLoad", depth: 1},
}

// DefaultOptions returns the options applied when none are configured:
// keep the service alive and start it at login.
func DefaultOptions() []OptionValue {
	return []OptionValue{
		{Name: "keep_alive", Enabled: true},
		{Name: "run_at_load", Enabled: true},
	}
}

// KnownOptionNames returns the recognized option names in sorted order.
func KnownOptionNames() []string {
	names := make([]string, 0, len(optionCatalog))
	for name := range optionCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderOptions renders options into descriptor fragments, one
// key/boolean pair per option, in input order. An option present with a
// false value renders a false literal rather than being omitted.
// Unrecognized names are rejected, and every offending name is reported.
func RenderOptions(opts []OptionValue) (string, error) {
	var errs MultiError
	var b strings.Builder
	for _, opt := range opts {
		entry, ok := optionCatalog[opt.Name]
		if !ok {
			errs.Add(fmt.Errorf("%w: %q", ErrUnknownOption, opt.Name))
			continue
		}
		indent := strings.Repeat("\t", entry.depth)
		literal := "false"
		if opt.Enabled {
			literal = "true"
		}
		fmt.Fprintf(&b, "%s<key>%s</key>\n%s<%s/>\n", indent, entry.key, indent, literal)
	}
	if err := errs.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
