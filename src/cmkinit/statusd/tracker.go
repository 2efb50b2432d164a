package statusd

import (
	"sync"

	"github.com/bitswalk/cmkinit/src/cmkinit/build"
	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/google/uuid"
)

// Progress is the last-known state of a running build, as reported by
// its build.ProgressFunc.
type Progress struct {
	BuildID uuid.UUID `json:"build_id"`
	Percent int       `json:"percent"`
	Message string    `json:"message"`
	Done    bool      `json:"done"`
}

// Tracker holds the progress of the single build currently in flight,
// if any. cmkinit builds one image per invocation, so there is never
// more than one running build to track.
type Tracker struct {
	mu      sync.RWMutex
	current *Progress
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Start begins tracking buildID, replacing whatever was tracked before.
func (t *Tracker) Start(buildID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &Progress{BuildID: buildID}
}

// Finish marks the tracked build as done, recording err if it failed.
func (t *Tracker) Finish(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return
	}
	t.current.Done = true
	t.current.Percent = 100
	if err != nil {
		t.current.Message = err.Error()
	}
}

// Current returns the tracked build's progress, or ok=false if no
// build has run yet this process.
func (t *Tracker) Current() (Progress, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.current == nil {
		return Progress{}, false
	}
	return *t.current, true
}

// Func returns a build.ProgressFunc that updates t as the build runs.
// Wire it into build.Pipeline.Run alongside Start/Finish:
//
//	tracker.Start(bc.ID)
//	err := pipeline.Run(ctx, bc, tracker.Func())
//	tracker.Finish(err)
func (t *Tracker) Func() build.ProgressFunc {
	return func(percent int, message string) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.current == nil {
			return
		}
		t.current.Percent = percent
		t.current.Message = message
	}
}

// progressFromRecord synthesizes a Progress for a build this process
// never ran (an earlier build, or one run by a previous invocation):
// 100% for a terminal status, 0% while still marked running in the
// ledger (a crashed build never reaches RecordStage's success path, so
// a stale "running" row is genuinely unknown progress, not 0% literal).
func progressFromRecord(rec ledger.BuildRecord) Progress {
	p := Progress{BuildID: rec.ID, Message: rec.ErrorMessage}
	switch rec.Status {
	case ledger.StatusSuccess, ledger.StatusFailed:
		p.Percent = 100
		p.Done = true
	}
	if p.Message == "" {
		p.Message = rec.Status
	}
	return p
}
