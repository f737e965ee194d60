// Package version carries build-time version metadata.
package version

// Version is set via ldflags in release builds:
// go build -ldflags "-X github.com/starford/jera/internal/version.Version=v1.2.0".
var Version = "dev"

// Build metadata, also injected via ldflags.
var (
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// String renders the version with commit metadata when present.
func String() string {
	if GitCommit == "unknown" {
		return Version
	}
	return Version + " (" + GitCommit + ")"
}
