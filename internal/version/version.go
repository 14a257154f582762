// Package version carries build identification stamped in by the
// release process via -ldflags.
package version

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"
	// Commit is the short git revision the binary was built from.
	Commit = "unknown"
	// BuildDate is the UTC build timestamp.
	BuildDate = "unknown"
)

// String formats the build identification for --version output.
func String() string {
	return fmt.Sprintf("prism %s (%s, built %s)", Version, Commit, BuildDate)
}
