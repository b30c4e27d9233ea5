// Package build holds build-time information.
package build

// Values overwritten by linker flags in release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
