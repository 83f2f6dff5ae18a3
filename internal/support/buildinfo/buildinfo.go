// Package buildinfo carries the version stamped in at link time.
package buildinfo

// Overridden via -ldflags on release builds; the defaults identify a
// development build.
var (
	Version = "dev"
	Commit  = "none"
)

// String renders version and commit for human-facing output.
func String() string {
	if Commit == "none" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
