package covers

import (
	"os"
	"path/filepath"
	"testing"
)

func coverDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("img"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
	return dir
}

func TestNextMissingDir(t *testing.T) {
	p := New("/does/not/exist", 8)
	if got := p.Next(); got != DefaultCover {
		t.Errorf("Next = %q, want default", got)
	}
}

func TestNextEmptyDir(t *testing.T) {
	p := New(t.TempDir(), 8)
	if got := p.Next(); got != DefaultCover {
		t.Errorf("Next = %q, want default", got)
	}
}

func TestNextSkipsNonImages(t *testing.T) {
	dir := coverDir(t, "a.png", "notes.txt", "b.JPG")
	p := New(dir, 8)
	for i := 0; i < 10; i++ {
		got := p.Next()
		if got != "a.png" && got != "b.JPG" {
			t.Fatalf("Next = %q, want an image file", got)
		}
	}
}

func TestNextAvoidsRecent(t *testing.T) {
	dir := coverDir(t, "a.png", "b.png", "c.png")
	p := New(dir, 3)

	// With the recent bound covering the whole set, three draws must hand
	// out three distinct covers.
	seen := make(map[string]bool)
	for i := 0; i < 3; i++ {
		seen[p.Next()] = true
	}
	if len(seen) != 3 {
		t.Errorf("got %d distinct covers in 3 draws, want 3", len(seen))
	}

	// The set is exhausted; the next draw still succeeds.
	if got := p.Next(); got == DefaultCover {
		t.Error("exhausted recent set degraded to default cover")
	}
}

func TestRecentSetEviction(t *testing.T) {
	dir := coverDir(t, "a.png", "b.png", "c.png", "d.png")
	p := New(dir, 2)

	for i := 0; i < 20; i++ {
		p.Next()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.recent) > 2 || len(p.order) > 2 {
		t.Errorf("recent set grew past bound: %d tracked", len(p.recent))
	}
}

func TestReset(t *testing.T) {
	dir := coverDir(t, "a.png", "b.png")
	p := New(dir, 2)
	p.Next()
	p.Next()
	p.Reset()

	p.mu.Lock()
	tracked := len(p.recent)
	p.mu.Unlock()
	if tracked != 0 {
		t.Errorf("recent set not cleared: %d tracked", tracked)
	}
	if got := p.Next(); got == DefaultCover {
		t.Errorf("Next after reset = %q, want an image", got)
	}
}

func TestNextN(t *testing.T) {
	dir := coverDir(t, "a.png", "b.png")
	p := New(dir, 0)
	got := p.NextN(5)
	if len(got) != 5 {
		t.Fatalf("got %d references, want 5", len(got))
	}
	for _, n := range got {
		if n != "a.png" && n != "b.png" {
			t.Errorf("reference %q not from directory", n)
		}
	}
}
