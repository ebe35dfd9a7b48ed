package launchagent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// absAgainst resolves path against base when it is not already absolute.
// Path fields stay relative until this point so configs remain portable
// across working directories.
func absAgainst(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

// copyFile copies src to dst atomically, preserving the source's
// permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return renameio.WriteFile(dst, data, info.Mode().Perm())
}

// copyTree recursively copies the directory rooted at src into dst.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, DirMode)
		}
		return copyFile(path, target)
	})
}

// stageSources copies the configured entrypoint, requirements manifest,
// module directories, and extra files into dir under their canonical
// staged names. Relative sources resolve against baseDir. The first
// failing copy aborts the remaining ones.
func stageSources(cfg *InstallConfig, baseDir, dir string) error {
	entry := absAgainst(baseDir, cfg.Entrypoint)
	if _, err := os.Stat(entry); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrEntrypointMissing, entry)
		}
		return fmt.Errorf("checking entrypoint: %w", err)
	}
	if err := copyFile(entry, filepath.Join(dir, StagedEntrypoint)); err != nil {
		return fmt.Errorf("copying entrypoint: %w", err)
	}

	reqs := absAgainst(baseDir, cfg.Requirements)
	if err := copyFile(reqs, filepath.Join(dir, StagedRequirements)); err != nil {
		return fmt.Errorf("copying requirements manifest: %w", err)
	}

	for _, mod := range cfg.Modules {
		src := absAgainst(baseDir, mod)
		dst := filepath.Join(dir, filepath.Base(src))
		if err := copyTree(src, dst); err != nil {
			return fmt.Errorf("copying module %s: %w", mod, err)
		}
	}

	for _, file := range cfg.Files {
		src := absAgainst(baseDir, file)
		if err := copyFile(src, filepath.Join(dir, filepath.Base(src))); err != nil {
			return fmt.Errorf("copying file %s: %w", file, err)
		}
	}

	return nil
}

// stageHelper resolves the named helper script and writes it into dir
// with executable permissions.
func stageHelper(helperDir, name, dir string) error {
	src, data, err := ResolveHelper(helperDir, name)
	if err != nil {
		return err
	}
	if src != "" {
		if data, err = os.ReadFile(src); err != nil {
			return fmt.Errorf("reading helper %s: %w", name, err)
		}
	}
	if err := renameio.WriteFile(filepath.Join(dir, name), data, ExecMode); err != nil {
		return fmt.Errorf("writing helper %s: %w", name, err)
	}
	return nil
}
