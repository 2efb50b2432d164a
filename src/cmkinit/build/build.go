// Package build orchestrates a full cmkinit build (C7): a fixed
// sequence of Stages running over a shared Context, from laying out the
// image skeleton through publishing and recording the finished
// artifact. Grounded on the teacher's ldfd/build package — one Stage
// type per build phase, run in order by a worker loop that validates,
// executes and reports per-stage progress.
package build

import (
	"context"
	"fmt"

	cmerrors "github.com/bitswalk/cmkinit/src/common/errors"
	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
)

// ProgressFunc reports a stage's progress: percent is 0-100 within the
// current stage, message is a short human-readable status line.
type ProgressFunc func(percent int, message string)

// Stage is one phase of a build.
type Stage interface {
	Name() string
	Validate(ctx context.Context, bc *Context) error
	Execute(ctx context.Context, bc *Context, progress ProgressFunc) error
}

// Pipeline runs a fixed, ordered list of Stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns a Pipeline running stages in order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// DefaultPipeline is cmkinit's standard build with publishing and
// ledger recording both disabled (zero-value PublishStage/RecordStage)
// — useful for tests and dry runs. Real CLI invocations should use
// StandardPipeline to wire those in.
func DefaultPipeline() *Pipeline {
	return NewPipeline(
		&SkeletonStage{},
		&GraphFinalizeStage{},
		&InitEmitStage{},
		&ResolveFilesStage{},
		&BusyboxStage{},
		&SerializeStage{},
		&CompressStage{},
		&PublishStage{},
		&RecordStage{},
	)
}

// StandardPipeline is DefaultPipeline with the optional publish target
// and ledger store wired in; either may be left zero/nil to disable
// that stage.
func StandardPipeline(pub PublishOptions, store *ledger.Store, configPath string) *Pipeline {
	return NewPipeline(
		&SkeletonStage{},
		&GraphFinalizeStage{},
		&InitEmitStage{},
		&ResolveFilesStage{},
		&BusyboxStage{},
		&SerializeStage{},
		&CompressStage{},
		&PublishStage{Publish: pub},
		&RecordStage{Ledger: store, ConfigPath: configPath},
	)
}

// Run executes every stage in order against bc, reporting progress
// scaled to the overall pipeline. Any stage error aborts the run;
// partial artifacts under bc.Workspace are left in place unless
// bc.Options.CleanOnError, in which case the caller is responsible for
// cleanup (the pipeline itself never deletes bc.OutputPath).
func (p *Pipeline) Run(ctx context.Context, bc *Context, progress ProgressFunc) error {
	total := len(p.stages)
	for i, stage := range p.stages {
		name := stage.Name()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		log.Infof("stage %s: starting", name)
		if err := stage.Validate(ctx, bc); err != nil {
			return cmerrors.ErrInternal.WithMessagef("stage %s: validation failed: %v", name, err)
		}

		stageProgress := func(percent int, message string) {
			if progress == nil {
				return
			}
			overall := (i*100 + percent) / total
			progress(overall, message)
		}

		if err := stage.Execute(ctx, bc, stageProgress); err != nil {
			return fmt.Errorf("stage %s: %w", name, err)
		}
		log.Infof("stage %s: done", name)
	}
	return nil
}
