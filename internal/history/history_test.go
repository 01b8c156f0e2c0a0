package history

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/LogDetect/internal/detect"
	"github.com/yildizm/LogDetect/internal/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), nil)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreCRUD(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	idA, err := store.Save(ctx, Run{File: "a.log", StartedAt: started, Duration: 1500 * time.Millisecond, Outcome: "success", Summary: "Ventanas: 3"})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	idB, err := store.Save(ctx, Run{File: "b.log", StartedAt: started.Add(time.Minute), Outcome: "server", StatusCode: 413, Error: "file too large"})
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}

	runs, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != idB || runs[1].ID != idA {
		t.Fatalf("expected newest first, got ids %d, %d", runs[0].ID, runs[1].ID)
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List limit error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected 1 run with limit, got %d", len(limited))
	}

	got, err := store.Get(ctx, idA)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.File != "a.log" || got.Duration != 1500*time.Millisecond || !got.StartedAt.Equal(started) {
		t.Fatalf("unexpected run %+v", got)
	}

	failed, err := store.Get(ctx, idB)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if failed.StatusCode != 413 || failed.Error != "file too large" {
		t.Fatalf("unexpected failed run %+v", failed)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := store.Get(ctx, idA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
}

func TestRecordSubmission(t *testing.T) {
	store := openTestStore(t)

	body := `{"predicted_labels":["Walking","Walking","Sitting"],"samples":3}`
	resp, err := detect.Decode([]byte(body), detect.DecodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	result := &detect.Result{Response: resp, Raw: []byte(body)}

	store.RecordSubmission(detect.Outcome{
		File:     "walk.log",
		Started:  time.Now(),
		Duration: 20 * time.Millisecond,
		Result:   result,
		View:     detect.Render(result),
	})
	store.RecordSubmission(detect.Outcome{Started: time.Now(), Err: detect.NewValidationError()})

	runs, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	failed, success := runs[0], runs[1]
	if failed.Outcome != "validation" || failed.Error != detect.MsgNoFile {
		t.Errorf("unexpected validation run %+v", failed)
	}
	if success.Outcome != "success" || success.Dominant != "Walking (2)" || success.Raw != body {
		t.Errorf("unexpected success run %+v", success)
	}
	if !strings.HasPrefix(success.Summary, "Ventanas: 3 |") {
		t.Errorf("unexpected summary %q", success.Summary)
	}
}

func TestRecordSubmission_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithCallback("history", func() bool { return false })
	log.SetOutput(&buf)

	store, err := Open(filepath.Join(t.TempDir(), "history.db"), log)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	_ = store.Close()

	store.RecordSubmission(detect.Outcome{File: "a.log"})
	if !strings.Contains(buf.String(), "could not record run") {
		t.Errorf("expected a warning after close, got %q", buf.String())
	}
}
