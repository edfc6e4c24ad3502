package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestReader(t *testing.T, files map[string]string) *LocalReader {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir failed: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	r, err := NewLocalReader(dir)
	if err != nil {
		t.Fatalf("NewLocalReader failed: %v", err)
	}
	return r
}

func TestLocalReader_PlainText(t *testing.T) {
	r := newTestReader(t, map[string]string{
		"resume.txt":    "Jane Doe\nSenior Engineer",
		"notes/info.md": "# Heading\nbody text",
	})

	text, ok := r.ReadText("resume.txt")
	if !ok {
		t.Fatal("Expected resume.txt to be readable")
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Errorf("Text content lost, got %q", text)
	}

	text, ok = r.ReadText("notes/info.md")
	if !ok {
		t.Fatal("Expected nested markdown to be readable")
	}
	if !strings.Contains(text, "body text") {
		t.Errorf("Markdown content lost, got %q", text)
	}
}

func TestLocalReader_CSVFlattening(t *testing.T) {
	r := newTestReader(t, map[string]string{
		"people.csv": "name,role\nJane Doe,Engineer\n,solo\n",
	})

	text, ok := r.ReadText("people.csv")
	if !ok {
		t.Fatal("Expected CSV to be readable")
	}

	// cells joined by spaces, rows by newlines, empty cells dropped
	want := "name role\nJane Doe Engineer\nsolo"
	if text != want {
		t.Errorf("CSV flattening got %q, want %q", text, want)
	}
}

func TestLocalReader_RejectsUnsupportedAndMissing(t *testing.T) {
	r := newTestReader(t, map[string]string{
		"binary.bin": "\x00\x01",
		"data.txt":   "fine",
	})

	if _, ok := r.ReadText("binary.bin"); ok {
		t.Error("Unsupported extension must not be readable")
	}
	if _, ok := r.ReadText("ghost.txt"); ok {
		t.Error("Missing file must not be readable")
	}
	if _, ok := r.ReadText("data.txt"); !ok {
		t.Error("Supported file should still be readable")
	}
}

func TestLocalReader_PathTraversalGuard(t *testing.T) {
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("secret"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	r := newTestReader(t, map[string]string{"ok.txt": "ok", "secret.txt": "inside"})

	escapes := []string{
		"../secret.txt",
		"../../etc/passwd",
		"..%2F..%2Fetc/passwd",
		"nested/../../secret.txt",
	}
	for _, p := range escapes {
		if _, ok := r.ReadText(p); ok {
			t.Errorf("Climbing path %q must be rejected, not re-rooted", p)
		}
	}
	if text, ok := r.ReadText("/etc/passwd"); ok && text != "" {
		t.Error("Absolute path escaped the base directory")
	}

	// absolute-looking paths are re-rooted under the base dir, not rejected
	if _, ok := r.ReadText("/ok.txt"); !ok {
		t.Error("Leading slash should resolve inside the base directory")
	}
}

func TestLocalReader_SymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	target := filepath.Join(outside, "secret.txt")
	if err := os.WriteFile(target, []byte("secret"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	r := newTestReader(t, map[string]string{"ok.txt": "ok"})
	link := filepath.Join(r.baseDir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, ok := r.ReadText("link.txt"); ok {
		t.Error("Symlink pointing outside the base directory must not be readable")
	}
}

func TestGuessMime(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"doc.pdf", "application/pdf"},
		{"notes.unknownext", "text/plain"},
	}
	for _, tt := range tests {
		if got := GuessMime(tt.path); !strings.HasPrefix(got, tt.want) {
			t.Errorf("GuessMime(%q) got %q, want prefix %q", tt.path, got, tt.want)
		}
	}
}
