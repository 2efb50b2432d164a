// Package initscript emits the POSIX /init shell script (C5): the
// program the kernel runs as PID 1 inside the initramfs. It wires
// together C4's DataSource graph (loading the root filesystem and any
// extra mounts, plus each involved kind's one-shot class initializer)
// with the fixed boot-sequence scaffolding — environment setup, rescue
// shell helpers, command-line parsing, keymap loading, module loading,
// configurable breakpoints, and the final switch_root.
package initscript

import (
	"fmt"
	"io"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// Breakpoint names a point in the boot sequence where the script can be
// told to drop into a rescue shell instead of continuing, via
// rd.break=<name> on the kernel command line or the matching RD_BREAK_*
// environment variable.
type Breakpoint int

const (
	BreakEarly Breakpoint = iota
	BreakInit
	BreakModule
	BreakRootfs
	BreakMount
)

func (b Breakpoint) envVar() string {
	switch b {
	case BreakEarly:
		return "RD_BREAK_EARLY"
	case BreakInit:
		return "RD_BREAK_INIT"
	case BreakModule:
		return "RD_BREAK_MODULE"
	case BreakRootfs:
		return "RD_BREAK_ROOTFS"
	case BreakMount:
		return "RD_BREAK_MOUNT"
	default:
		panic(fmt.Sprintf("initscript: unknown breakpoint %d", b))
	}
}

func (b Breakpoint) String() string {
	switch b {
	case BreakEarly:
		return "early"
	case BreakInit:
		return "init"
	case BreakModule:
		return "module"
	case BreakRootfs:
		return "rootfs"
	case BreakMount:
		return "mount"
	default:
		return "unknown"
	}
}

// ModuleSpec is a kernel module to be modprobe'd during boot, with its
// module parameters.
type ModuleSpec struct {
	Name string
	Args []string
}

// die returns a shell fragment that calls the die() function with msg,
// single-quoted and FATAL-prefixed, matching the original's _die helper.
func die(msg string) string {
	return "die " + source.ShQuote("FATAL: "+msg) + "\n"
}

func writeAll(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return cmerrors.ErrIOFailure.WithCause(err).WithMessage("writing init script")
		}
	}
	return nil
}
