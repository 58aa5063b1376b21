package success

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func initTestStore(t *testing.T) {
	t.Helper()
	if err := Init(filepath.Join(t.TempDir(), "success.db")); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { Close() })
}

func TestStoreAndGet(t *testing.T) {
	initTestStore(t)

	jobData := map[string]string{"video": "clip.mp4", "caption": "hello"}
	err := Store("tok456", jobData, 2300*time.Millisecond, 1048576, 2)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	record, err := Get("tok456")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if record == nil {
		t.Fatal("stored record not found")
	}
	if record.Token != "tok456" {
		t.Errorf("token %q", record.Token)
	}
	if record.ElapsedMS != 2300 {
		t.Errorf("elapsed %d ms, want 2300", record.ElapsedMS)
	}
	if record.SizeBytes != 1048576 {
		t.Errorf("size %d, want 1048576", record.SizeBytes)
	}
	if record.Deliveries != 2 {
		t.Errorf("deliveries %d, want 2", record.Deliveries)
	}
	if !strings.Contains(record.JobData, "clip.mp4") {
		t.Errorf("job data %q missing input name", record.JobData)
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

func TestDelete(t *testing.T) {
	initTestStore(t)

	if err := Store("gone", nil, 0, 0, 1); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := Delete("gone"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if record, _ := Get("gone"); record != nil {
		t.Error("deleted record still present")
	}
}

func TestCleanupOldRecords(t *testing.T) {
	initTestStore(t)

	if err := Store("fresh", nil, time.Second, 100, 1); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := CleanupOldRecords(24 * time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords: %v", err)
	}
	if record, _ := Get("fresh"); record == nil {
		t.Fatal("fresh record removed by generous cleanup window")
	}

	if err := CleanupOldRecords(-time.Hour); err != nil {
		t.Fatalf("CleanupOldRecords: %v", err)
	}
	if record, _ := Get("fresh"); record != nil {
		t.Error("record survived a cutoff in the future")
	}
}
