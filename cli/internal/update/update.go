// Package update checks that a config file was written for a compatible
// version of expand-go.
package update

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// SupportedConfig is the range of config_version values this build reads.
const SupportedConfig = ">= 1.0.0, < 2.0.0"

// CurrentConfig is the config_version written by this build.
const CurrentConfig = "1.0.0"

var supported = version.MustConstraints(version.NewConstraint(SupportedConfig))

// CheckConfigVersion reports an error if v is malformed or outside
// SupportedConfig.
func CheckConfigVersion(v string) error {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return fmt.Errorf("invalid config_version %q: %w", v, err)
	}
	if !supported.Check(parsed) {
		return fmt.Errorf("config_version %s is not supported (want %s)", parsed, SupportedConfig)
	}
	return nil
}

// NeedsUpgrade reports whether a config written as v is older than the
// format this build writes.
func NeedsUpgrade(v string) (bool, error) {
	parsed, err := version.NewVersion(v)
	if err != nil {
		return false, fmt.Errorf("invalid config_version %q: %w", v, err)
	}
	return parsed.LessThan(version.Must(version.NewVersion(CurrentConfig))), nil
}
