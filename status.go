package launchagent

import (
	"strconv"
	"strings"
)

// ServiceStatus is one entry of the service manager's listing.
type ServiceStatus struct {
	// Label is the service label
	Label string
	// PID is the running process ID, -1 when not running
	PID int
	// LastExitStatus is the most recent exit status, 0 when never exited
	LastExitStatus int
}

// Status is the result of the status operation for one identity. The
// filesystem fields come from the engine's own namespaces; the listing
// fields report whatever the service manager reports.
type Status struct {
	// Identity is the queried service identity
	Identity Identity
	// Staged reports whether the staging directory exists
	Staged bool
	// Registered reports whether the descriptor file is registered
	Registered bool
	// Loaded reports whether the listing contains the service label
	Loaded bool
	// PID is the running process ID, -1 when not running
	PID int
	// LastExitStatus is the last exit status the manager reported
	LastExitStatus int
}

// Running reports whether the service has a live process.
func (s *Status) Running() bool {
	return s.Loaded && s.PID > 0
}

// ParseList parses the three-column output of the service manager's
// listing: PID, last exit status, label. A dash in the PID column means
// not running (-1); a dash in the status column means 0. The header
// line and malformed lines are skipped.
func ParseList(output string) []ServiceStatus {
	var entries []ServiceStatus
	lines := strings.Split(output, "\n")

	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}

		entry := ServiceStatus{Label: fields[2]}

		if fields[0] == "-" {
			entry.PID = -1
		} else {
			pid, _ := strconv.Atoi(fields[0])
			entry.PID = pid
		}

		if fields[1] == "-" {
			entry.LastExitStatus = 0
		} else {
			status, _ := strconv.Atoi(fields[1])
			entry.LastExitStatus = status
		}

		entries = append(entries, entry)
	}

	return entries
}

// FindService returns the listing entry for label, if present.
func FindService(output, label string) (ServiceStatus, bool) {
	for _, entry := range ParseList(output) {
		if entry.Label == label {
			return entry, true
		}
	}
	return ServiceStatus{}, false
}
