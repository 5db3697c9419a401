package version

// Version is the simulator version. It is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-rl/internal/version.Version=1.2.3"
// "main" marks a development build.
var Version = "v1.0.0"

// GetVersion returns the current version of the simulator.
func GetVersion() string {
	return Version
}
