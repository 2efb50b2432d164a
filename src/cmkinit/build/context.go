package build

import (
	"time"

	"github.com/bitswalk/cmkinit/src/cmkinit/config"
	"github.com/bitswalk/cmkinit/src/cmkinit/image"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
	"github.com/google/uuid"
)

// ArtifactInfo describes the final output written by CompressStage.
type ArtifactInfo struct {
	Path   string
	SHA256 string
	Size   int64
}

// Context carries everything a Stage needs, and accumulates the state
// later stages depend on (the image Builder, the rendered init script
// path, the final artifact).
type Context struct {
	ID uuid.UUID

	Config  *config.Config
	Options config.BuilderOptions

	// Workspace is a scratch directory for intermediate files (the
	// rendered /init script, the gen_init_cpio text list).
	Workspace string

	// OutputPath is the final artifact's destination: a single file
	// for cpio output, a directory for dir output.
	OutputPath string

	Builder *image.Builder

	CPIOListPath string
	Artifact     ArtifactInfo

	StartedAt time.Time
}

// allNodes returns the root and every DataSource it transitively
// depends on (hard and load-only), deduplicated, plus the same for
// every extra mount — the full vertex set whose Files/Execs/Libs/Kmods
// fields (C3/C5's raw material) need collecting.
func allNodes(roots []*source.Node) []*source.Node {
	seen := map[*source.Node]bool{}
	var out []*source.Node
	var visit func(n *source.Node)
	visit = func(n *source.Node) {
		if n == nil || seen[n] {
			return
		}
		seen[n] = true
		out = append(out, n)
		for _, dep := range n.IterAllDeps() {
			visit(dep)
		}
	}
	for _, r := range roots {
		visit(r)
	}
	return out
}
