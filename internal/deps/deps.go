// Package deps locates the optional external executables rhetoric can shell
// out to.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external executable rhetoric can use.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to the binary by CheckVersions to
	// record its version string.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// CheckBinaries resolves each requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = path
		status.Available = true
		results = append(results, status)
	}
	return results
}

const versionProbeTimeout = 10 * time.Second

// CheckVersions is CheckBinaries followed by a version probe of each
// available binary that declares VersionArgs. A failing probe marks the
// dependency unavailable.
func CheckVersions(ctx context.Context, requirements []Requirement) []Status {
	results := CheckBinaries(requirements)
	for i, req := range requirements {
		if !results[i].Available || len(req.VersionArgs) == 0 {
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
		out, err := exec.CommandContext(probeCtx, results[i].Path, req.VersionArgs...).Output()
		cancel()
		if err != nil {
			results[i].Available = false
			results[i].Detail = fmt.Sprintf("%s failed to report a version: %v", results[i].Command, err)
			continue
		}
		results[i].Version = firstLine(string(out))
	}
	return results
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
