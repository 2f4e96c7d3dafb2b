// Package version exposes build metadata, set at link time through -ldflags -X.
package version

//nolint:gochecknoglobals // overwritten by the linker
var (
	name    = "tactus"
	version = "dev"
	commit  = "unknown"
)

// Name returns the binary name.
func Name() string {
	return name
}

// Version returns the release version, or "dev" for local builds.
func Version() string {
	return version
}

// Commit returns the VCS revision the binary was built from.
func Commit() string {
	return commit
}
