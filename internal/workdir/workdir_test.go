package workdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReset_RemovesStaleContent(t *testing.T) {
	home := t.TempDir()
	dir := Dir(home)
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(dir, "nested", "old.tmp")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Reset(home)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got != dir {
		t.Fatalf("dir: got %q, want %q", got, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch dir should be empty, has %d entries", len(entries))
	}
}

func TestReset_CreatesMissing(t *testing.T) {
	home := t.TempDir()
	dir, err := Reset(home)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Fatalf("scratch dir not created: %v", err)
	}
}

func TestWritePort(t *testing.T) {
	dir := t.TempDir()
	fp, err := WritePort(dir, 43127)
	if err != nil {
		t.Fatalf("WritePort: %v", err)
	}
	b, err := os.ReadFile(fp)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "43127" {
		t.Fatalf("content: got %q, want plain decimal", b)
	}
	port, err := ReadPort(dir)
	if err != nil || port != 43127 {
		t.Fatalf("ReadPort: got %d, %v", port, err)
	}
}

func TestWritePort_MissingDir(t *testing.T) {
	if _, err := WritePort(filepath.Join(t.TempDir(), "absent"), 1); err == nil {
		t.Fatal("want error for missing directory")
	}
}
