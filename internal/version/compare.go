package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CheckVersionCompatibility checks whether an engine can run a configuration
// written for configVersion.
//
// Compatibility Rules:
//   - If either version is "main" (development build), the check is skipped
//   - Major versions must match exactly
//   - The engine must not be older than the configuration; prerelease and
//     build metadata are ignored
//
// Examples:
//   - Engine 1.2.0, Config 1.2.0 -> OK
//   - Engine 1.4.1, Config 1.2.0 -> OK (newer engine reads older configs)
//   - Engine 1.2.0, Config 1.3.0 -> ERROR (config needs a newer engine)
//   - Engine 2.0.0, Config 1.2.0 -> ERROR (major differs)
//   - Engine main, Config 1.2.0 -> OK (dev build, skip check)
func CheckVersionCompatibility(engineVersion, configVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if engineVersion == "main" || configVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return fmt.Errorf("invalid engine version '%s': %w", engineVersion, err)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return fmt.Errorf("invalid configuration version '%s': %w", configVersion, err)
	}

	if engineSemver.Major() != configSemver.Major() {
		return fmt.Errorf("major version mismatch: engine is %d.x.x but configuration requires %d.x.x",
			engineSemver.Major(), configSemver.Major())
	}

	engineCore := semver.New(engineSemver.Major(), engineSemver.Minor(), engineSemver.Patch(), "", "")
	configCore := semver.New(configSemver.Major(), configSemver.Minor(), configSemver.Patch(), "", "")

	if engineCore.LessThan(configCore) {
		return fmt.Errorf("engine %s is older than configuration version %s", engineCore, configCore)
	}

	return nil
}
