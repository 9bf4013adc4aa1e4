package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-pairs/pkg/errors"
)

// CheckVersionCompatibility checks that a configuration written for
// configVersion can run on engineVersion.
//
// Rules:
//   - An empty config version is not pinned and always passes
//   - "main" on either side is a development build and skips the check
//   - Major and minor versions must match, patch versions may differ
//
// Examples:
//   - Engine 1.2.1, config 1.2.0 -> OK
//   - Engine 1.3.0, config 1.2.0 -> ERROR (minor differs)
//   - Engine main, config 1.2.0 -> OK
func CheckVersionCompatibility(engineVersion, configVersion string) error {
	if configVersion == "" {
		return nil
	}

	engineVersion = strings.TrimPrefix(engineVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if engineVersion == "main" || configVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if engineSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: engine is %d.x.x but config requires %d.x.x",
			engineSemver.Major(), configSemver.Major())
	}

	if engineSemver.Minor() != configSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "minor version mismatch: engine is %d.%d.x but config requires %d.%d.x",
			engineSemver.Major(), engineSemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
