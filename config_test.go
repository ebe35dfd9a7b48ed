package launchagent

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(dir, CLI{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.Project != filepath.Base(dir) {
		t.Errorf("Project = %q, want %q", cfg.Project, filepath.Base(dir))
	}
	if cfg.Tag != DefaultTag {
		t.Errorf("Tag = %q, want %q", cfg.Tag, DefaultTag)
	}
	if cfg.Entrypoint != DefaultEntrypoint {
		t.Errorf("Entrypoint = %q, want %q", cfg.Entrypoint, DefaultEntrypoint)
	}
	if cfg.Requirements != DefaultRequirements {
		t.Errorf("Requirements = %q, want %q", cfg.Requirements, DefaultRequirements)
	}
	if len(cfg.Modules) != 0 {
		t.Errorf("Modules = %v, want empty", cfg.Modules)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files = %v, want empty", cfg.Files)
	}
	if cfg.LogsFilename != "" {
		t.Errorf("LogsFilename = %q, want empty", cfg.LogsFilename)
	}
	if cfg.DescriptorOverride != "" {
		t.Errorf("DescriptorOverride = %q, want empty", cfg.DescriptorOverride)
	}
	assertOptions(t, cfg.Options, DefaultOptions())
}

func TestResolveCLIValues(t *testing.T) {
	dir := t.TempDir()

	cli := CLI{
		Name:         "sensor",
		Tag:          "nightly",
		Entrypoint:   "./collect.py",
		Requirements: "./deps.txt",
		Modules:      "lib, ./utils/ ,",
		Files:        "settings.toml,data/seed.json",
		Logs:         "out.log",
		Plist:        "custom.plist",
	}
	cfg, err := Resolve(dir, cli)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.Project != "sensor" {
		t.Errorf("Project = %q, want %q", cfg.Project, "sensor")
	}
	if cfg.Tag != "nightly" {
		t.Errorf("Tag = %q, want %q", cfg.Tag, "nightly")
	}
	if cfg.Entrypoint != "./collect.py" {
		t.Errorf("Entrypoint = %q, want %q", cfg.Entrypoint, "./collect.py")
	}
	assertStrings(t, "Modules", cfg.Modules, []string{"lib", "utils"})
	assertStrings(t, "Files", cfg.Files, []string{"settings.toml", "data/seed.json"})
	if cfg.LogsFilename != "out.log" {
		t.Errorf("LogsFilename = %q, want %q", cfg.LogsFilename, "out.log")
	}
	if cfg.DescriptorOverride != "custom.plist" {
		t.Errorf("DescriptorOverride = %q, want %q", cfg.DescriptorOverride, "custom.plist")
	}
}

func TestResolveFileWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
name: filed
entrypoint: ./service.py
logs: service.log
`)

	cli := CLI{
		Name:       "clied",
		Tag:        "nightly",
		Entrypoint: "./other.py",
		Logs:       "other.log",
		Modules:    "lib",
	}
	cfg, err := Resolve(dir, cli)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.Project != "filed" {
		t.Errorf("Project = %q, want %q", cfg.Project, "filed")
	}
	if cfg.Entrypoint != "./service.py" {
		t.Errorf("Entrypoint = %q, want %q", cfg.Entrypoint, "./service.py")
	}
	if cfg.LogsFilename != "service.log" {
		t.Errorf("LogsFilename = %q, want %q", cfg.LogsFilename, "service.log")
	}

	// Fields the file leaves out fall back to defaults, never to the
	// command line.
	if cfg.Tag != DefaultTag {
		t.Errorf("Tag = %q, want %q", cfg.Tag, DefaultTag)
	}
	if len(cfg.Modules) != 0 {
		t.Errorf("Modules = %v, want empty", cfg.Modules)
	}
}

func TestResolveEmptyFileIgnoresCLI(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := Resolve(dir, CLI{Name: "clied", Tag: "nightly"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if cfg.Project != filepath.Base(dir) {
		t.Errorf("Project = %q, want %q", cfg.Project, filepath.Base(dir))
	}
	if cfg.Tag != DefaultTag {
		t.Errorf("Tag = %q, want %q", cfg.Tag, DefaultTag)
	}
	assertOptions(t, cfg.Options, DefaultOptions())
}

func TestResolveFileListForms(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
name: demo
modules:
  - lib
  - ./utils/
files: "settings.toml, data/seed.json"
`)

	cfg, err := Resolve(dir, CLI{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	assertStrings(t, "Modules", cfg.Modules, []string{"lib", "utils"})
	assertStrings(t, "Files", cfg.Files, []string{"settings.toml", "data/seed.json"})
}

func TestResolveFileOptions(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
name: demo
options:
  run_at_load: false
  keep_alive: true
`)

	cfg, err := Resolve(dir, CLI{})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	// Configured order survives resolution, values included.
	assertOptions(t, cfg.Options, []OptionValue{
		{Name: "run_at_load", Enabled: false},
		{Name: "keep_alive", Enabled: true},
	})
}

func TestResolveFileUnknownOption(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
name: demo
options:
  keep_alive: true
  launch_on_mount: true
`)

	_, err := Resolve(dir, CLI{})
	if !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("error = %v, want ErrUnknownOption", err)
	}

	var oerr *OpError
	if !errors.As(err, &oerr) {
		t.Fatalf("error type = %T, want *OpError", err)
	}
	if oerr.Op != OpResolve {
		t.Errorf("Op = %v, want %v", oerr.Op, OpResolve)
	}
}

func TestResolveFileOptionsNotMapping(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
name: demo
options:
  - keep_alive
`)

	_, err := Resolve(dir, CLI{})
	if err == nil {
		t.Fatal("expected error for sequence-valued options")
	}
}

func TestResolveMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "name: [unclosed")

	_, err := Resolve(dir, CLI{})
	if err == nil {
		t.Fatal("expected error for malformed config file")
	}

	var oerr *OpError
	if !errors.As(err, &oerr) {
		t.Fatalf("error type = %T, want *OpError", err)
	}
	if oerr.Op != OpResolve {
		t.Errorf("Op = %v, want %v", oerr.Op, OpResolve)
	}
}

func TestSplitList(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "single", in: "lib", want: []string{"lib"}},
		{name: "spaces trimmed", in: " lib , utils ", want: []string{"lib", "utils"}},
		{name: "empty segments dropped", in: "lib,,utils,", want: []string{"lib", "utils"}},
		{name: "paths cleaned", in: "./lib/,a/../b", want: []string{"lib", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitList(tc.in)
			assertStrings(t, "splitList", got, tc.want)
		})
	}
}

func assertStrings(t *testing.T, label string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %q, want %q", label, i, got[i], want[i])
		}
	}
}

func assertOptions(t *testing.T, got, want []OptionValue) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("options = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("option[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
