package launchagent

import (
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

//go:embed scripts/pylaunchagent_run scripts/pylaunchagent_install_venv
var helperScripts embed.FS

// HelperScript returns the embedded contents of the named helper script.
func HelperScript(name string) ([]byte, error) {
	return helperScripts.ReadFile("scripts/" + name)
}

// ResolveHelper locates the helper script to stage. Resolution order: an
// explicit helper directory when configured, then the invoking user's
// PATH, then the embedded copy. A configured directory that lacks the
// script is an error rather than a fallthrough.
//
// Exactly one of path and data is set on success: a non-empty path names
// an on-disk script to copy, a non-nil data slice holds the embedded
// script body to write.
func ResolveHelper(helperDir, name string) (path string, data []byte, err error) {
	if helperDir != "" {
		p := filepath.Join(helperDir, name)
		if _, statErr := os.Stat(p); statErr != nil {
			return "", nil, fmt.Errorf("%w: %s", ErrHelperNotFound, p)
		}
		return p, nil, nil
	}

	if p, lookErr := exec.LookPath(name); lookErr == nil {
		return p, nil, nil
	}

	data, err = helperScripts.ReadFile("scripts/" + name)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrHelperNotFound, name)
	}
	return "", data, nil
}
