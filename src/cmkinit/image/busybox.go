package image

import (
	"bufio"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/elf"
)

// shellSpecialBuiltins and shellReservedWords are commands the POSIX
// shell itself always provides, with or without busybox — add_busybox
// seeds its "already covered" set with these so /init never ends up
// trying (and failing) to resolve them as external executables.
var shellSpecialBuiltins = []string{
	"break", ":", "continue", ".", "eval", "exec", "exit", "export",
	"readonly", "return", "set", "shift", "times", "trap", "unset",
}

var shellReservedWords = []string{
	"!", "{", "}", "case", "do", "done", "elif", "else", "esac", "fi",
	"for", "if", "in", "then", "until", "while",
}

// busyboxApplets runs "busybox --list-full" against sysBusybox (a host
// binary used only to enumerate applets, not necessarily the one that
// ends up in the image) and returns each applet's absolute path.
func busyboxApplets(sysBusybox string) ([]string, error) {
	cmd := exec.Command(sysBusybox, "--list-full")
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.ErrExternalToolFailed.WithCause(err).WithMessagef("%s --list-full", sysBusybox)
	}
	var applets []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		applets = append(applets, "/"+line)
	}
	return applets, nil
}

// AddBusybox adds the image's busybox binary, hard-links every applet it
// reports onto its own destination, and falls back to AddExecutable for
// any command in needed that busybox doesn't provide and the shell
// doesn't build in. sysBusybox is a host PATH lookup used only to list
// applets; pass "" to resolve it via the default PATH search.
func (b *Builder) AddBusybox(needed []string, sysBusybox string) error {
	if sysBusybox == "" {
		ref, err := exec.LookPath("busybox")
		if err != nil {
			return errors.ErrBinaryMissing.WithCause(err).WithMessage("busybox not found on PATH to enumerate applets")
		}
		sysBusybox = ref
	}

	dep, err := elf.FindExec("busybox", b.compatRef(), b.BinRoot)
	if err != nil {
		return err
	}
	if err := b.AddFile(dep.Src, dep.Dest, 0); err != nil {
		return err
	}

	covered := make(map[string]bool, len(shellSpecialBuiltins)+len(shellReservedWords))
	for _, w := range shellSpecialBuiltins {
		covered[w] = true
	}
	for _, w := range shellReservedWords {
		covered[w] = true
	}

	applets, err := busyboxApplets(sysBusybox)
	if err != nil {
		return err
	}
	for _, applet := range applets {
		covered[filepath.Base(applet)] = true
		if err := b.AddFile(dep.Src, applet, 0); err != nil {
			if errors.Is(err, errors.ErrItemConflict) {
				log.Warn("busybox applet conflicts with an existing item, skipping", "applet", applet)
				continue
			}
			return err
		}
	}

	for _, cmd := range needed {
		if covered[cmd] {
			continue
		}
		if err := b.AddExecutable(cmd, "", 0); err != nil {
			return err
		}
	}
	return nil
}
