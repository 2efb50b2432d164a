package build

import (
	"context"
	"time"

	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
)

// RecordStage writes the build's final outcome to the ledger (C8). The
// ledger itself is optional — a nil Ledger disables recording entirely,
// e.g. for a one-off `cmkinit build --no-history` invocation.
type RecordStage struct {
	Ledger     *ledger.Store
	ConfigPath string
}

func (s *RecordStage) Name() string { return "record" }

func (s *RecordStage) Validate(ctx context.Context, bc *Context) error {
	return nil
}

func (s *RecordStage) Execute(ctx context.Context, bc *Context, progress ProgressFunc) error {
	if s.Ledger == nil {
		progress(100, "no ledger configured, skipping")
		return nil
	}

	finished := time.Now()
	rec := ledger.BuildRecord{
		ID:             bc.ID,
		Status:         ledger.StatusSuccess,
		ConfigPath:     s.ConfigPath,
		OutputPath:     bc.OutputPath,
		Kernels:        bc.Options.Kernels,
		Compression:    bc.Options.Compression,
		ArtifactSHA256: bc.Artifact.SHA256,
		ArtifactSize:   bc.Artifact.Size,
		StartedAt:      bc.StartedAt,
		FinishedAt:     &finished,
	}
	if err := s.Ledger.Record(rec); err != nil {
		return err
	}
	progress(100, "build recorded")
	return nil
}
