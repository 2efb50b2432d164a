package image

import "github.com/bitswalk/cmkinit/src/common/logs"

var log = logs.NewDefault()

// SetLogger overrides the package logger, following the same pattern as
// the rest of cmkinit's core packages.
func SetLogger(l *logs.Logger) {
	if l != nil {
		log = l
	}
}
