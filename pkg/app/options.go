package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// NamedFlagSetOptions is implemented by the options of every command built
// with this package.
type NamedFlagSetOptions interface {
	// Flags returns the command's flags grouped by concern.
	Flags() cliflag.NamedFlagSets

	// Complete fills in fields that depend on other fields or on the environment.
	Complete() error

	// Validate checks the options and aggregates every problem found.
	Validate() error
}
