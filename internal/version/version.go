// Package version holds build information set via -ldflags, e.g.
//
//	-X github.com/gotrs-io/snipeit-e2e/internal/version.Version=v0.3.0
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the release tag or branch name.
	Version = "dev"

	// GitCommit is the short commit SHA.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// Info is the build information printed by the version command.
type Info struct {
	Version    string `json:"version" yaml:"version"`
	GitCommit  string `json:"git_commit" yaml:"git_commit"`
	BuildDate  string `json:"build_date" yaml:"build_date"`
	GoVersion  string `json:"go_version" yaml:"go_version"`
	Playwright string `json:"playwright,omitempty" yaml:"playwright,omitempty"`
}

// GetInfo returns the current build information. Playwright is the version
// of the playwright-go module linked into the binary, when known.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range bi.Deps {
			if dep.Path == "github.com/playwright-community/playwright-go" {
				info.Playwright = dep.Version
			}
		}
	}
	return info
}

// String returns "v0.3.0 (abc1234)".
func String() string {
	return fmt.Sprintf("%s (%s)", Version, GitCommit)
}

// Full returns the version with commit, build date and Go version.
func Full() string {
	return fmt.Sprintf("%s (%s) built %s with %s", Version, GitCommit, BuildDate, runtime.Version())
}
