package launchagent

import "path/filepath"

// Identity is the deterministic name and path set derived from a project
// name and tag. Two configs sharing the same (project, tag) pair address
// the same service; labels and descriptor paths of pairs differing in
// either field never collide. The staging directory is keyed on the
// project alone, so a project's tags share one staged tree and the most
// recent install owns its contents.
type Identity struct {
	// Project is the project-name component
	Project string
	// Tag is the tag component
	Tag string
	// ServiceName is the launchd label, "<namespace>.<tag>.<project>"
	ServiceName string
	// DescriptorFilename is the registered descriptor file name
	DescriptorFilename string
	// DescriptorPath is the absolute path of the registered descriptor
	DescriptorPath string
	// DestDir is the absolute staging directory of the project
	DestDir string
}

// DeriveIdentity computes the identity for a (project, tag) pair against
// the given state root and service registry directory. It is a pure
// function: equal inputs always yield equal results, so every component
// can agree on naming without duplicating the string formatting.
func DeriveIdentity(project, tag, stateRoot, agentsDir string) Identity {
	name := Namespace + "." + tag + "." + project
	filename := name + DescriptorExt
	return Identity{
		Project:            project,
		Tag:                tag,
		ServiceName:        name,
		DescriptorFilename: filename,
		DescriptorPath:     filepath.Join(agentsDir, filename),
		DestDir:            filepath.Join(stateRoot, project),
	}
}

// StagingDir returns the temporary directory an install populates before
// the atomic rename onto DestDir.
func (id Identity) StagingDir() string {
	return id.DestDir + StagingSuffix
}

// RunScriptPath returns the path of the staged launcher script, the
// program the generated descriptor points launchd at.
func (id Identity) RunScriptPath() string {
	return filepath.Join(id.DestDir, RunScriptName)
}

// LogPath returns the absolute path of a log file declared relative to
// the staging directory. Absolute inputs are returned unchanged.
func (id Identity) LogPath(logsFilename string) string {
	if filepath.IsAbs(logsFilename) {
		return logsFilename
	}
	return filepath.Join(id.DestDir, logsFilename)
}
