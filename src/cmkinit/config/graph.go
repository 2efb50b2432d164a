package config

import (
	"strings"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

// graphBuilder turns the named, non-DEFAULT sections of an iniFile into
// the DataSource graph (C4), resolving cross-references (need/load-need,
// and every source-valued field) lazily and memoizing by section name so
// a DataSource referenced from several places is only ever built once.
// Mirrors entry.py's find_data/read_config pair.
type graphBuilder struct {
	ini      *iniFile
	built    map[string]*source.Node
	building map[string]bool
}

func newGraphBuilder(ini *iniFile) *graphBuilder {
	return &graphBuilder{
		ini:      ini,
		built:    map[string]*source.Node{},
		building: map[string]bool{},
	}
}

// resolve turns a reference string into a Node: a UUID=/PATH=/LABEL=/
// PARTUUID=/PARTLABEL= literal creates an anonymous leaf node on the
// spot; a DATA=<name> or bare name looks up (and, if needed, builds) the
// named section.
func (g *graphBuilder) resolve(ref string) (*source.Node, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, "PARTUUID="):
		return source.NewUUID(strings.TrimPrefix(ref, "PARTUUID="), true), nil
	case strings.HasPrefix(ref, "UUID="):
		return source.NewUUID(strings.TrimPrefix(ref, "UUID="), false), nil
	case strings.HasPrefix(ref, "PARTLABEL="):
		return source.NewLabel(strings.TrimPrefix(ref, "PARTLABEL="), true), nil
	case strings.HasPrefix(ref, "LABEL="):
		return source.NewLabel(strings.TrimPrefix(ref, "LABEL="), false), nil
	case strings.HasPrefix(ref, "PATH="):
		return source.NewPath(strings.TrimPrefix(ref, "PATH=")), nil
	case strings.HasPrefix(ref, "DATA="):
		return g.build(strings.TrimPrefix(ref, "DATA="))
	default:
		return g.build(ref)
	}
}

// build constructs (or returns the memoized) Node for the section named
// name, detecting reference cycles via the "building" in-progress set
// (spec.md I1 "the dependency graph is acyclic").
func (g *graphBuilder) build(name string) (*source.Node, error) {
	if n, ok := g.built[name]; ok {
		return n, nil
	}
	if g.building[name] {
		return nil, cmerrors.ErrConfigInvalid.WithMessagef("dependency cycle detected at section %q", name)
	}
	if _, ok := g.ini.sections[name]; !ok {
		return nil, cmerrors.ErrConfigInvalid.WithMessagef("undefined data source %q", name)
	}

	s := g.ini.section(name)
	g.building[name] = true
	defer delete(g.building, name)

	n, err := g.construct(name, s)
	if err != nil {
		return nil, err
	}

	for _, ref := range s.list("need") {
		dep, err := g.resolve(ref)
		if err != nil {
			return nil, err
		}
		n.AddDep(dep)
	}
	for _, ref := range s.list("load-need") {
		dep, err := g.resolve(ref)
		if err != nil {
			return nil, err
		}
		n.AddLoadDep(dep)
	}
	g.built[name] = n
	return n, nil
}

// construct builds the Node for section name according to its "type"
// field, resolving every source-valued field through resolve.
func (g *graphBuilder) construct(name string, s section) (*source.Node, error) {
	typ, ok := s.get("type")
	if !ok {
		return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing type", name)
	}

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "path":
		path, ok := s.get("path")
		if !ok {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing path", name)
		}
		return source.NewPath(path), nil

	case "uuid":
		id, ok := s.get("uuid")
		if !ok {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing uuid", name)
		}
		return source.NewUUID(id, s.getBool("partition", false)), nil

	case "label":
		lbl, ok := s.get("label")
		if !ok {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing label", name)
		}
		return source.NewLabel(lbl, s.getBool("partition", false)), nil

	case "luks":
		src, err := g.requireRef(name, s, "source")
		if err != nil {
			return nil, err
		}
		key, err := g.optionalRef(s, "key")
		if err != nil {
			return nil, err
		}
		header, err := g.optionalRef(s, "header")
		if err != nil {
			return nil, err
		}
		lname, _ := s.get("name")
		return source.NewLuks(src, lname, key, header, s.getBool("discard", false)), nil

	case "lvm":
		vg := s.getDefault("vg-name", s.getDefault("vg", ""))
		lv := s.getDefault("lv-name", s.getDefault("lv", ""))
		return source.NewLvm(vg, lv), nil

	case "mount":
		src, err := g.requireRef(name, s, "source")
		if err != nil {
			return nil, err
		}
		mp, _ := s.get("mountpoint")
		fs := s.getDefault("filesystem", s.getDefault("fstype", ""))
		opts, _ := s.get("options")
		return source.NewMount(src, mp, fs, opts), nil

	case "md":
		var sources []*source.Node
		for _, ref := range s.list("sources") {
			n, err := g.resolve(ref)
			if err != nil {
				return nil, err
			}
			sources = append(sources, n)
		}
		if len(sources) == 0 {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing sources", name)
		}
		mname, _ := s.get("name")
		return source.NewMd(sources, mname), nil

	case "clone":
		src, err := g.requireRef(name, s, "source")
		if err != nil {
			return nil, err
		}
		dst, err := g.requireRef(name, s, "dest")
		if err != nil {
			return nil, err
		}
		return source.NewClone(src, dst), nil

	case "zfspool":
		pool, ok := s.get("pool")
		if !ok {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing pool", name)
		}
		cache, err := g.optionalRef(s, "cache")
		if err != nil {
			return nil, err
		}
		return source.NewZfsPool(pool, cache), nil

	case "zfscrypt":
		pool, err := g.requireRef(name, s, "pool")
		if err != nil {
			return nil, err
		}
		dataset, _ := s.get("dataset")
		key, err := g.optionalRef(s, "key")
		if err != nil {
			return nil, err
		}
		return source.NewZfsCrypt(pool, dataset, key), nil

	case "network":
		device := s.getDefault("device", s.getDefault("mac", ""))
		ip, _ := s.get("ip")
		mask := s.getDefault("mask", s.getDefault("netmask", ""))
		gw, _ := s.get("gateway")
		n, err := source.NewNetwork(device, ip, mask, gw)
		if err != nil {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: %v", name, err)
		}
		return n, nil

	case "iscsi":
		initiator, _ := s.get("initiator")
		target, _ := s.get("target")
		address, _ := s.get("address")
		username, _ := s.get("username")
		password, _ := s.get("password")
		usernameIn, _ := s.get("username-in")
		passwordIn, _ := s.get("password-in")
		n, err := source.NewISCSI(
			initiator, target, s.getInt("portal-group", 0),
			address, s.getInt("port", 3260),
			username, password, usernameIn, passwordIn,
		)
		if err != nil {
			return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: %v", name, err)
		}
		return n, nil

	default:
		return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: unknown type %q", name, typ)
	}
}

func (g *graphBuilder) requireRef(name string, s section, key string) (*source.Node, error) {
	ref, ok := s.get(key)
	if !ok {
		return nil, cmerrors.ErrConfigInvalid.WithMessagef("section %q: missing required field %q", name, key)
	}
	return g.resolve(ref)
}

func (g *graphBuilder) optionalRef(s section, key string) (*source.Node, error) {
	ref, ok := s.get(key)
	if !ok {
		return nil, nil
	}
	return g.resolve(ref)
}
