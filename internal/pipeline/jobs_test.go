package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/ncparse/internal/render"
)

func TestDigests(t *testing.T) {
	tests := []struct {
		name   string
		digest func([]byte) string
		input  string
		want   string
	}{
		{"sha256 empty", ContentHashHex, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"sha256 text", ContentHashHex, "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"blake3 empty", Blake3Hex, "", "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"blake3 text", Blake3Hex, "hello world", "d74981efa70a0c880b8d8c1985d075dbcbf679b99a5f9914e5aaf96b831a9e24"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.digest([]byte(tt.input)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
			if other := tt.digest([]byte(tt.input + "!")); other == tt.want {
				t.Error("expected a different digest for different input")
			}
		})
	}
}

func TestNewJob(t *testing.T) {
	a := NewJob("a.nc", []byte("x"))
	b := NewJob("b.nc", nil)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.ID, b.ID)
	}
	if len(a.ID) != 36 {
		t.Errorf("expected uuid string, got %q", a.ID)
	}
	if a.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, a.Status)
	}
	if string(a.FileData()) != "x" {
		t.Errorf("expected file data kept, got %q", a.FileData())
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusRendering, "rendering"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_SetStatusFailed(t *testing.T) {
	job := &Job{
		ID:        "test-fail",
		Status:    StatusRendering,
		UpdatedAt: time.Now(),
	}
	job.SetStatus(StatusFailed, "parsing")
	if job.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("document 3: render pdf")
	job.AddError("document 7: render docx")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "document 3: render pdf" {
		t.Errorf("expected first error %q, got %q", "document 3: render pdf", snap.Progress.Errors[0])
	}
}

func TestJob_AddDocument(t *testing.T) {
	job := &Job{ID: "docs-test", UpdatedAt: time.Now()}
	job.AddDocument(DocumentResult{Index: 0, Stats: &render.Stats{Words: 3}, text: "three word text"})
	job.AddDocument(DocumentResult{Index: 1})

	snap := job.Snapshot()
	if snap.Progress.DocumentsRendered != 1 {
		t.Errorf("expected 1 rendered document, got %d", snap.Progress.DocumentsRendered)
	}
	if text, ok := job.DocumentText(0); !ok || text != "three word text" {
		t.Errorf("expected rendered text, got %q (%v)", text, ok)
	}
	if _, ok := job.DocumentText(1); ok {
		t.Error("expected no text for an unrendered document")
	}
	if _, ok := job.DocumentText(5); ok {
		t.Error("expected no text for a missing document")
	}
	if snap.Summary != nil {
		t.Error("expected no summary before a filing is set")
	}
}

func TestJob_Done(t *testing.T) {
	job := &Job{ID: "done-test"}
	done := job.Done()
	select {
	case <-done:
		t.Fatal("expected Done to block before finish")
	default:
	}
	job.finish()
	job.finish()
	select {
	case <-done:
	default:
		t.Fatal("expected Done closed after finish")
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
