// Package constant defines application-level identifiers and build metadata.
package constant

const (
	// Spacetime is the application name used for filesystem paths, environment variables and CLI branding.
	Spacetime = "spacetime"

	Version = "0.1.0"
)

// Build metadata, set with -ldflags "-X".
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
