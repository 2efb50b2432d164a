package config

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
)

// defaultSection is the implicit section whose keys are used as a
// fallback for every other section's lookups, mirroring Python
// configparser's DEFAULTSECT.
const defaultSection = "DEFAULT"

// iniFile is a minimal configparser-style document: an implicit
// DEFAULT section plus zero or more named sections, each a flat
// key=value map. Unlike configparser this doesn't support value
// interpolation, only line-folded continuations for multi-line values
// (entry.py's files/execs/libs/need lists rely on those).
type iniFile struct {
	order    []string
	sections map[string]map[string]string
}

func parseINI(r io.Reader) (*iniFile, error) {
	f := &iniFile{sections: map[string]map[string]string{defaultSection: {}}}
	cur := defaultSection
	lastKey := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		if strings.TrimSpace(raw) == "" {
			continue
		}

		trimmed := strings.TrimLeft(raw, " \t")
		if trimmed != raw && lastKey != "" {
			f.sections[cur][lastKey] += "\n" + strings.TrimSpace(trimmed)
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			end := strings.Index(trimmed, "]")
			if end < 0 {
				return nil, cmerrors.ErrConfigInvalid.WithMessagef("line %d: malformed section header %q", lineNo, raw)
			}
			name := strings.TrimSpace(trimmed[1:end])
			if name == "" {
				return nil, cmerrors.ErrConfigInvalid.WithMessagef("line %d: empty section name", lineNo)
			}
			cur = name
			if _, ok := f.sections[cur]; !ok {
				f.order = append(f.order, cur)
				f.sections[cur] = map[string]string{}
			}
			lastKey = ""
			continue
		}

		sep := strings.IndexAny(trimmed, "=:")
		if sep < 0 {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("line %d: expected key=value, got %q", lineNo, raw)
		}
		key := strings.ToLower(strings.TrimSpace(trimmed[:sep]))
		val := strings.TrimSpace(trimmed[sep+1:])
		f.sections[cur][key] = val
		lastKey = key
	}
	if err := scanner.Err(); err != nil {
		return nil, cmerrors.ErrIOFailure.WithCause(err)
	}
	return f, nil
}

// section is a read view over one named section that falls back to
// DEFAULT for any key it doesn't itself set.
type section struct {
	name string
	own  map[string]string
	def  map[string]string
}

func (f *iniFile) section(name string) section {
	return section{name: name, own: f.sections[name], def: f.sections[defaultSection]}
}

func (s section) get(key string) (string, bool) {
	if v, ok := s.own[key]; ok && v != "" {
		return v, true
	}
	v, ok := s.def[key]
	return v, ok && v != ""
}

func (s section) getDefault(key, def string) string {
	if v, ok := s.get(key); ok {
		return v
	}
	return def
}

func (s section) getBool(key string, def bool) bool {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return def
	}
}

func (s section) getInt(key string, def int) int {
	v, ok := s.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// list splits a comma-separated value, as used by need/load-need/
// mountpoints/sources.
func (s section) list(key string) []string {
	v, ok := s.get(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// lines splits a newline-separated value, as used by files/execs/libs,
// which fold onto multiple lines via indentation.
func (s section) lines(key string) []string {
	v, ok := s.own[key]
	if !ok || v == "" {
		v, ok = s.def[key]
	}
	if !ok {
		return nil
	}
	var out []string
	for _, line := range strings.Split(v, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
