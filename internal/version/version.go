// Package version holds build metadata injected via ldflags.
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders "bookclub <version> (<commit>, <date>)".
func String() string {
	return "bookclub " + Version + " (" + Commit + ", " + Date + ")"
}
