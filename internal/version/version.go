// Package version carries build metadata injected with ldflags:
//
//	go build -ldflags "-X github.com/pablasso/taskloop/internal/version.Version=v1.0.0"
package version

import "fmt"

var (
	// Version is the semantic version of the application.
	Version = "dev"

	// CommitSHA is the git commit SHA at build time.
	CommitSHA = "unknown"

	// BuildDate is the date when the binary was built.
	BuildDate = "unknown"
)

// String formats all build metadata on one line.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, CommitSHA, BuildDate)
}
