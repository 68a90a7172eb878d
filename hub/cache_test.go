package hub

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathFlattensRepository(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got := cache.Path("google/gemma-3-4b-it-qat-q4_0-gguf", "gemma-3-4b-it-q4_0.gguf")
	want := filepath.Join(cache.dir, "google--gemma-3-4b-it-qat-q4_0-gguf", "gemma-3-4b-it-q4_0.gguf")
	if got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
}

func TestDownloadedChecksPresenceAndSize(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cache.Downloaded("org/repo", "model.gguf") {
		t.Fatal("missing file reported as downloaded")
	}

	path := cache.Path("org/repo", "model.gguf")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if cache.Downloaded("org/repo", "model.gguf") {
		t.Fatal("empty file reported as downloaded")
	}

	if err := os.WriteFile(path, []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !cache.Downloaded("org/repo", "model.gguf") {
		t.Fatal("present file not reported as downloaded")
	}
}

func TestDeleteMissingFileIsNotAnError(t *testing.T) {
	cache, err := NewCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete("org/repo", "model.gguf"); err != nil {
		t.Fatalf("Delete() = %v", err)
	}
}
