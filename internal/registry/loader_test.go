package registry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(""), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
}

func TestScan_FiltersGGUF(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.GGUF", "a.gguf", "not-model.txt", "model.bin")
	if err := os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	files, err := Scan(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a.gguf" || filepath.Base(files[1]) != "b.GGUF" {
		t.Fatalf("unexpected files: %v", files)
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "sqlcoder.gguf")
	p := filepath.Join(dir, "sqlcoder.gguf")
	got, err := Resolve(p)
	if err != nil || got != p {
		t.Fatalf("Resolve(file) = %q, %v", got, err)
	}
}

func TestResolve_DirectoryPrefersReducedPrecision(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "sqlcoder-7b-2.Q4_K_M.gguf", "sqlcoder-7b-2.f16.gguf", "sqlcoder-7b-2.f32.gguf", "config.json")
	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if filepath.Base(got) != "sqlcoder-7b-2.f16.gguf" {
		t.Fatalf("picked %s", got)
	}

	dir = t.TempDir()
	touch(t, dir, "b.gguf", "a.gguf")
	if got, _ := Resolve(dir); filepath.Base(got) != "a.gguf" {
		t.Fatalf("expected first by name, got %s", got)
	}
}

func TestResolve_Missing(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
	if _, err := Resolve(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist for empty dir, got %v", err)
	}
}
