package elf

import (
	stdelf "debug/elf"
)

// osabiCompatSet are the OSABI values treated as interchangeable:
// {NONE, SYSV, GNU, LINUX}. SYSV shares NONE's byte value (0) and GNU
// shares LINUX's (3) in the ELF spec itself, so two map entries cover
// all four names.
var osabiCompatSet = map[stdelf.OSABI]bool{
	stdelf.ELFOSABI_NONE:  true,
	stdelf.ELFOSABI_LINUX: true,
}

// Compatible reports whether two ELF files can be loaded into the same
// process: same class, same byte order, same machine, and either an
// identical OSABI or both OSABIs drawn from the compatibility set.
func Compatible(a, b *stdelf.File) bool {
	if a.Class != b.Class || a.Data != b.Data || a.Machine != b.Machine {
		return false
	}
	if a.OSABI == b.OSABI {
		return true
	}
	return osabiCompatSet[a.OSABI] && osabiCompatSet[b.OSABI]
}

// ClassBits returns 32 or 64 for the ELF file's class.
func ClassBits(f *stdelf.File) int {
	if f.Class == stdelf.ELFCLASS64 {
		return 64
	}
	return 32
}

// openCompat opens path and reports its *stdelf.File only if it parses as
// ELF and is compatible with ref. A non-ELF or unreadable file is treated
// as "not a candidate", not as an error — candidates are tried in order
// and the caller moves on to the next one.
func openCompat(path string, ref *stdelf.File) (*stdelf.File, bool) {
	f, err := stdelf.Open(path)
	if err != nil {
		return nil, false
	}
	if ref != nil && !Compatible(f, ref) {
		f.Close()
		return nil, false
	}
	return f, true
}
