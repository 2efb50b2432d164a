package initscript

import "io"

// writeRescueShellFunc defines rescue_shell(), which prints its one
// argument then execs /bin/sh. Must never be called from a subshell —
// the exec replaces the calling shell itself.
func writeRescueShellFunc(w io.Writer) error {
	return writeAll(w,
		"rescue_shell()\n",
		"{\n",
		"\tprintk \"$1\"\n",
		"\techo 'Dropping you into a shell'\n",
		"\texec '/bin/sh'\n",
		"}\n\n",
	)
}

// writePrintkFunc defines printk(), which logs its one argument to both
// /dev/kmsg and stderr.
func writePrintkFunc(w io.Writer) error {
	return writeAll(w,
		"printk()\n",
		"{\n",
		"\techo \"initramfs: $1\" 1>/dev/kmsg\n",
		"\techo \"$1\" 1>&2\n",
		"}\n\n",
	)
}

// writePanicFunc defines panic(), which logs its argument, syncs, and
// exits /init — causing a kernel panic, since nothing else can be PID 1.
func writePanicFunc(w io.Writer) error {
	return writeAll(w,
		"panic()\n",
		"{\n",
		"\tprintk \"$1\"\n",
		"\techo 'Terminating init'\n",
		"\tsync\n",
		"\texit\n",
		"}\n\n",
	)
}

// writeDieFunc defines die(), which either panics or drops to a rescue
// shell depending on whether RD_PANIC was set on the command line.
func writeDieFunc(w io.Writer) error {
	return writeAll(w,
		"die()\n",
		"{\n",
		"\t[ -n \"${RD_PANIC+x}\" ] && panic \"$1\" || rescue_shell \"$1\"\n",
		"}\n\n",
	)
}
