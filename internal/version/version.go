// Package version exposes build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the semantic version, injected at build time
	Version = "dev"

	// GitCommit is the git commit hash, injected at build time
	GitCommit = "unknown"

	// BuildDate is the build date, injected at build time
	BuildDate = "unknown"

	// GoVersion is the Go version used to build
	GoVersion = runtime.Version()
)

// Full returns the version with the short commit hash when available.
func Full() string {
	if GitCommit != "" && GitCommit != "unknown" && len(GitCommit) >= 7 {
		return fmt.Sprintf("%s (%s)", Version, GitCommit[:7])
	}
	return Version
}

// UserAgent returns a user agent string for HTTP clients.
func UserAgent() string {
	return fmt.Sprintf("chromactl/%s", Version)
}
