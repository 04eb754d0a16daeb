// Package deps reports availability of the external binaries the enhancement
// pipeline shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"boostd/internal/config"
)

// Requirement defines an external dependency boostd relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements returns the external binaries for the configured pipeline.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{Name: "VapourSynth", Command: cfg.Boost.VSPipeBinary, Description: "streams the enhancement script as y4m"},
		{Name: "FFmpeg", Command: cfg.Boost.FFmpegBinary, Description: "encodes the boosted stream and muxes original audio"},
		{Name: "ExifTool", Command: cfg.Boost.ExiftoolBinary, Description: "copies metadata tags onto the boosted output"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
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
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
