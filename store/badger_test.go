package store

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
)

func openTestDB(t *testing.T) *Badger {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := Open(t.TempDir(), log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoad(t *testing.T) {
	db := openTestDB(t)

	want := []byte(`{"language":"en"}`)
	if err := db.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Load = %q, want %q", got, want)
	}
}

func TestLoadWithoutSnapshot(t *testing.T) {
	db := openTestDB(t)

	data, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if data != nil {
		t.Fatalf("Load = %q, want nil", data)
	}
}

func TestSaveOverwritesPrevious(t *testing.T) {
	db := openTestDB(t)

	if err := db.Save([]byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := db.Save([]byte("second")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := db.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("Load = %q, want %q", got, "second")
	}
}
