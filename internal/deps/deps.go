package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds each version probe.
const versionTimeout = 5 * time.Second

// Requirement describes an external binary tldw shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArgs, when set, are run to confirm the binary works.
	VersionArgs []string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// YtDlp is the metadata extractor requirement for the given binary.
func YtDlp(binary string) Requirement {
	return Requirement{
		Name:        "yt-dlp",
		Command:     binary,
		Description: "Required for video metadata and caption discovery",
		VersionArgs: []string{"--version"},
	}
}

// CheckYtDlp resolves the yt-dlp binary and reports its version.
func CheckYtDlp(ctx context.Context, binary string) Status {
	return Check(ctx, YtDlp(binary))
}

// CheckBinaries evaluates every requirement in order.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(ctx, req))
	}
	return results
}

// Check resolves one requirement on PATH and, when VersionArgs is set, probes
// it. Detail carries the version on success and the reason otherwise.
func Check(ctx context.Context, req Requirement) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(status.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}
	status.Path = path
	if len(req.VersionArgs) == 0 {
		status.Available = true
		return status
	}
	version, err := probeVersion(ctx, path, req.VersionArgs)
	if err != nil {
		status.Detail = fmt.Sprintf("version probe failed: %v", err)
		return status
	}
	status.Available = true
	status.Detail = "version " + version
	return status
}

func probeVersion(ctx context.Context, binary string, args []string) (string, error) {
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, binary, args...).Output() //nolint:gosec
	if err != nil {
		return "", err
	}
	version, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if version == "" {
		return "", fmt.Errorf("empty version output")
	}
	return strings.TrimSpace(version), nil
}
