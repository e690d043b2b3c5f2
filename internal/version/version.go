// Package version holds build metadata injected at link time.
package version

var (
	// Version is the semantic version, set via -ldflags.
	Version = "dev"
	// Commit is the git commit hash the binary was built from.
	Commit = "unknown"
	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)
