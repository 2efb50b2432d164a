package source

import "strings"

// shQuote returns s wrapped for safe, literal use as a single POSIX shell
// word, the same algorithm as Python's shlex.quote which the original
// implementation relies on throughout its shell-script emission: empty
// strings become '', and any embedded single quote is closed, escaped,
// and reopened.
func shQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, "\t\n !\"#$&'()*;<>?[\\]^`{|}~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShQuote is shQuote exported for use by other cmkinit packages
// (notably initscript) that need the same POSIX quoting rule.
func ShQuote(s string) string {
	return shQuote(s)
}
