package version

// Version is the current version of argo-pairs.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-pairs/internal/version.Version=1.2.3"
// The value "main" marks a development build.
var Version = "v0.4.0"

// GetVersion returns the current version of the engine.
func GetVersion() string {
	return Version
}
