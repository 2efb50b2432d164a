package build

import "github.com/bitswalk/cmkinit/src/common/logs"

var log = logs.NewDefault()

// SetLogger overrides the package-level logger, e.g. with one bound to
// a CLI invocation's --log-output/--log-level flags.
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}
