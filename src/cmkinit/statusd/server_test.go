package statusd

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitswalk/cmkinit/src/cmkinit/ledger"
	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *ledger.Store {
	t.Helper()
	store, err := ledger.Open(t.TempDir() + "/ledger.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestHandleHealthz(t *testing.T) {
	s := New(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleListBuilds_NoLedger(t *testing.T) {
	s := New(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/builds", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleGetBuild_NotFound(t *testing.T) {
	store := openTestStore(t)
	s := New(store, nil)
	req := httptest.NewRequest(http.MethodGet, "/builds/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleBuildProgress(t *testing.T) {
	tracker := NewTracker()
	s := New(nil, tracker)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/builds/"+id.String()+"/progress", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status before a build starts = %d, want 404", rec.Code)
	}

	tracker.Start(id)
	tracker.Func()(42, "resolving files")

	req = httptest.NewRequest(http.MethodGet, "/builds/"+id.String()+"/progress", nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleBuildProgress_FallsBackToLedger(t *testing.T) {
	store := openTestStore(t)
	s := New(store, nil)
	id := uuid.New()

	if err := store.Record(ledger.BuildRecord{ID: id, Status: ledger.StatusSuccess}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/builds/"+id.String()+"/progress", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
