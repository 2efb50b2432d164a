package initscript

import (
	"fmt"
	"io"

	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// writeHeader creates the /init shebang, sets up HOME/PATH, and defines
// the rescue_shell/printk/panic/die helper functions and the log family
// (emerg..debug, syslog severities 0-7) every later section relies on.
// log() writes to /dev/kmsg at the given severity, mirrors warnings and
// worse (or everything when RD_DEBUG is set) to stderr, and returns 0.
func writeHeader(w io.Writer, home, path string) error {
	if home == "" {
		home = "/root"
	}
	if path == "" {
		path = "/bin:/sbin"
	}
	if err := writeAll(w,
		"#!/bin/sh\n\n",
		"HOME="+source.ShQuote(home)+"\n",
		"export HOME\n",
		"PATH="+source.ShQuote(path)+"\n",
		"export PATH\n\n",
	); err != nil {
		return err
	}
	for _, fn := range []func(io.Writer) error{writeRescueShellFunc, writePrintkFunc, writePanicFunc, writeDieFunc} {
		if err := fn(w); err != nil {
			return err
		}
	}
	if err := writeAll(w,
		"log()\n",
		"{\n",
		"\techo \"<$1>initramfs: $2\" 1>/dev/kmsg\n",
		"\tif [ \"$1\" -le 4 ] || [ -n \"${RD_DEBUG+x}\" ]; then echo \"$2\" 1>&2; fi\n",
		"\treturn 0\n",
		"}\n\n",
	); err != nil {
		return err
	}
	for i, level := range []string{"emerg", "alert", "crit", "err", "warn", "notice", "info", "debug"} {
		if err := writeAll(w, fmt.Sprintf("%s()\n{\n\tlog %d \"$1\"\n}\n\n", level, i)); err != nil {
			return err
		}
	}
	return writeAll(w, "echo 'INITRAMFS: Start'\n\n")
}

// writeInit mounts /proc, /sys and /dev, lowers the kernel log level,
// and runs depmod if a module tree for the running kernel is present.
func writeInit(w io.Writer) error {
	return writeAll(w,
		"echo 'Initialization'\n",
		"test $$ -eq 1 || "+die("init expects to be run as PID 1"),
		"mount -t proc none /proc || "+die("Failed to mount /proc"),
		"mount -t sysfs none /sys || "+die("Failed to mount /sys"),
		"mount -t devtmpfs none /dev || "+die("Failed to mount /dev"),
		"echo 3 1>'/proc/sys/kernel/printk'\n",
		"if [ -d \"/lib/modules/$(uname -r)\" ]; then\n",
		"\tdepmod || "+die("Failed to generate modules.dep"),
		"else\n",
		"\tprintk \"WARNING: This initramfs may be incompatible with the current kernel $(uname -r)\"\n",
		"fi\n\n",
	)
}

// writeCmdline parses /proc/cmdline for init=, rd.break, rd.debug and
// rd.panic, up to a "--" separator (anything after is left for the real
// init process to see via "$@").
func writeCmdline(w io.Writer) error {
	return writeAll(w,
		"echo 'Parsing command-line'\n",
		"for cmdline in $(cat /proc/cmdline); do\n",
		"\tcase \"${cmdline}\" in\n",
		"\t--) break ;;\n",
		"\tinit=*) INIT=\"${cmdline#*=}\" ;;\n",
		"\trd.break) RD_BREAK_ROOTFS=true ;;\n",
		"\trd.break=*)\n",
		"\t\tOLDIFS=\"${IFS}\"\n",
		"\t\tIFS=','\n",
		"\t\tfor bpoint in ${cmdline#*=}; do\n",
		"\t\t\tcase \"${bpoint}\" in\n",
		"\t\t\tinit) RD_BREAK_INIT=true ;;\n",
		"\t\t\tmodule) RD_BREAK_MODULE=true ;;\n",
		"\t\t\trootfs) RD_BREAK_ROOTFS=true ;;\n",
		"\t\t\tmount) RD_BREAK_MOUNT=true ;;\n",
		"\t\t\t*) printk \"ERROR: Unknown breakpoint ${bpoint}\" ;;\n",
		"\t\t\tesac\n",
		"\t\tdone\n",
		"\t\tIFS=\"${OLDIFS}\"\n",
		"\t\t;;\n",
		"\trd.debug) RD_DEBUG=true ;;\n",
		"\trd.panic) RD_PANIC=true ;;\n",
		"\tesac\n",
		"done\n\n",
		"[ -n \"${RD_DEBUG+x}\" ] && PS4='+ $0:$LINENO: ' && set -x\n\n",
	)
}

// writeKeymap loads a console keymap previously built with loadkeys
// into the kernel via loadkmap.
func writeKeymap(w io.Writer, keymapFile string, unicode bool) error {
	mode := "-a"
	modeWord := "ASCII"
	if unicode {
		mode = "-u"
		modeWord = "unicode"
	}
	return writeAll(w,
		"echo 'Loading keymap'\n",
		"[ -f "+source.ShQuote(keymapFile)+" ] || "+die(fmt.Sprintf("Failed to load keymap, file %s not found", keymapFile)),
		"kbd_mode "+mode+" || "+die("Failed to set keyboard mode to "+modeWord),
		"loadkmap <"+source.ShQuote(keymapFile)+" || "+die("Failed to load keymap "+keymapFile),
		"\n",
	)
}

// writeModule modprobes a kernel module with its parameters.
func writeModule(w io.Writer, mod ModuleSpec) error {
	quotedArgs := ""
	for _, a := range mod.Args {
		quotedArgs += source.ShQuote(a) + " "
	}
	return writeAll(w,
		"echo 'Loading kernel module "+mod.Name+"'\n",
		"modprobe "+source.ShQuote(mod.Name)+" "+quotedArgs+"|| "+die("Failed to load module "+mod.Name),
		"\n",
	)
}

// writeBreak drops to a rescue shell if the breakpoint's RD_BREAK_* flag
// was set on the command line or in the environment.
func writeBreak(w io.Writer, bp Breakpoint) error {
	return writeAll(w,
		"[ -n \"${"+bp.envVar()+"+x}\" ] && rescue_shell "+source.ShQuote("Reached "+bp.String())+"\n\n",
	)
}

// writeSwitchRoot restores the boot-time kernel log level, unmounts the
// initramfs's /dev, /proc and /sys, and execs switch_root into newroot.
func writeSwitchRoot(w io.Writer, newroot *source.Node, initPath string) error {
	if initPath == "" {
		initPath = "/sbin/init"
	}
	return writeAll(w,
		"[ -z \"${INIT+x}\" ] && INIT="+source.ShQuote(initPath)+"\n",
		"printk \"Run ${INIT} as init process\"\n",
		"if [ -n \"${RD_DEBUG+x}\" ]; then\n",
		"\tprintk '  with arguments:'\n",
		"\tfor arg in \"$@\"; do printk \"    ${arg}\"; done\n",
		"\tprintk '  with environment:'\n",
		"\tenv | while read -r var; do printk \"    ${var}\"; done\n",
		"fi\n",
		"verb=\"$(awk '{ print $4 }' /proc/sys/kernel/printk)\"\n",
		"echo \"${verb}\" >/proc/sys/kernel/printk\n",
		"umount /dev || umount -l /dev || "+die("Failed to unmount /dev"),
		"umount /proc || umount -l /proc || "+die("Failed to unmount /proc"),
		"umount /sys || umount -l /sys || "+die("Failed to unmount /sys"),
		"echo 'INITRAMFS: End'\n",
		"exec switch_root "+newroot.Path()+" \"${INIT}\" \"$@\" || "+die("Failed to switch root"),
		"\n",
	)
}
