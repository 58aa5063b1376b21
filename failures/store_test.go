package failures

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func initTestStore(t *testing.T) {
	t.Helper()
	if err := Init(filepath.Join(t.TempDir(), "failures.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestStoreAndGet(t *testing.T) {
	initTestStore(t)

	jobData := map[string]string{"video": "clip.mp4"}
	err := Store("tok123", "encode", errors.New("exit status 1"), "stderr tail here", 1500*time.Millisecond, jobData)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	record, err := Get("tok123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil {
		t.Fatal("stored record not found")
	}
	if record.Token != "tok123" {
		t.Errorf("token %q", record.Token)
	}
	if record.Kind != "encode" {
		t.Errorf("kind %q, want encode", record.Kind)
	}
	if record.Error != "exit status 1" {
		t.Errorf("error %q", record.Error)
	}
	if record.Diagnostics != "stderr tail here" {
		t.Errorf("diagnostics %q", record.Diagnostics)
	}
	if record.ElapsedMS != 1500 {
		t.Errorf("elapsed %d ms, want 1500", record.ElapsedMS)
	}
}

func TestGetMissingRecord(t *testing.T) {
	initTestStore(t)

	record, err := Get("never-stored")
	if err != nil {
		t.Fatalf("missing record must not be an error: %v", err)
	}
	if record != nil {
		t.Errorf("got record %+v for unknown token", record)
	}
}

func TestList(t *testing.T) {
	initTestStore(t)

	for _, token := range []string{"aaa", "bbb", "ccc"} {
		if err := Store(token, "validation", errors.New("missing input"), "", 0, nil); err != nil {
			t.Fatalf("Store %s: %v", token, err)
		}
	}

	records, err := List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("listed %d records, want 3", len(records))
	}
}

func TestCleanupOldRecords(t *testing.T) {
	initTestStore(t)

	if err := Store("fresh", "encode", errors.New("boom"), "", 0, nil); err != nil {
		t.Fatalf("Store: %v", err)
	}

	// A generous window keeps the fresh record
	if err := CleanupOldRecords(24 * time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords: %v", err)
	}
	if record, _ := Get("fresh"); record == nil {
		t.Fatal("fresh record removed by generous cleanup window")
	}

	// A negative age puts the cutoff in the future, sweeping everything
	if err := CleanupOldRecords(-time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords: %v", err)
	}
	if record, _ := Get("fresh"); record != nil {
		t.Error("record survived a cutoff in the future")
	}
}
