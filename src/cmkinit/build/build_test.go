package build

import (
	"context"
	"errors"
	"testing"

	"github.com/bitswalk/cmkinit/src/cmkinit/config"
	"github.com/bitswalk/cmkinit/src/cmkinit/source"
)

type fakeStage struct {
	name    string
	log     *[]string
	failVal error
}

func (s *fakeStage) Name() string { return s.name }
func (s *fakeStage) Validate(ctx context.Context, bc *Context) error {
	return nil
}
func (s *fakeStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	*s.log = append(*s.log, s.name)
	progress(50, "halfway")
	if s.failVal != nil {
		return s.failVal
	}
	progress(100, "done")
	return nil
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	var log []string
	p := NewPipeline(
		&fakeStage{name: "a", log: &log},
		&fakeStage{name: "b", log: &log},
		&fakeStage{name: "c", log: &log},
	)
	var percents []int
	err := p.Run(context.Background(), &Context{}, func(percent int, message string) {
		percents = append(percents, percent)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(log) != 3 || log[0] != "a" || log[1] != "b" || log[2] != "c" {
		t.Errorf("unexpected stage order: %v", log)
	}
	if len(percents) == 0 || percents[len(percents)-1] != 100 {
		t.Errorf("expected final progress of 100, got %v", percents)
	}
}

func TestPipeline_AbortsOnStageError(t *testing.T) {
	var log []string
	wantErr := errors.New("boom")
	p := NewPipeline(
		&fakeStage{name: "a", log: &log},
		&fakeStage{name: "b", log: &log, failVal: wantErr},
		&fakeStage{name: "c", log: &log},
	)
	err := p.Run(context.Background(), &Context{}, nil)
	if err == nil || !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped %v, got %v", wantErr, err)
	}
	if len(log) != 2 {
		t.Errorf("expected stage c to be skipped after b's failure, ran: %v", log)
	}
}

func TestParseCompression(t *testing.T) {
	cases := map[string]bool{"": true, "none": true, "gzip": true, "xz": true, "bogus": false}
	for name, ok := range cases {
		_, err := parseCompression(name)
		if (err == nil) != ok {
			t.Errorf("parseCompression(%q) err = %v, want ok=%v", name, err, ok)
		}
	}
}

func TestAllNodes_DedupesTransitiveDeps(t *testing.T) {
	key := source.NewPath("/etc/keyfile")
	luks := source.NewLuks(source.NewPath("/dev/sda2"), "cryptroot", key, nil, false)
	root := source.NewLvm("vg0", "root")
	root.AddDep(luks)

	nodes := allNodes([]*source.Node{root})
	seen := map[*source.Node]int{}
	for _, n := range nodes {
		seen[n]++
	}
	for n, count := range seen {
		if count != 1 {
			t.Errorf("node %v appeared %d times, want 1", n, count)
		}
	}
	if seen[root] == 0 || seen[luks] == 0 || seen[key] == 0 {
		t.Errorf("expected root, luks and key all present, got %v", nodes)
	}
}

func TestGraphFinalizeStage_FailsWhenRootNotFinal(t *testing.T) {
	bc := &Context{Config: &config.Config{Root: source.NewPath("/dev/sda1")}}
	stage := &GraphFinalizeStage{}
	if err := stage.Execute(context.Background(), bc, func(int, string) {}); err == nil {
		t.Fatal("expected an error when root is not marked final")
	}
}
