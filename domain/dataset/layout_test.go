package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestEnsure_CreatesLabelsAndNull(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root)
	if err := l.Ensure(); err == nil {
		t.Fatalf("expected error without images directory")
	}
	if err := os.MkdirAll(l.Images, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := l.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, dir := range []string{l.Labels, l.Null} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestListImages_FiltersAndSorts(t *testing.T) {
	l := NewLayout(t.TempDir())
	for _, n := range []string{"b.png", "a.JPG", "c.jpeg", "notes.txt", "d.gif"} {
		writeFile(t, l.ImagePath(n), "x")
	}
	if err := os.MkdirAll(filepath.Join(l.Images, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := l.ListImages(nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a.JPG", "b.png", "c.jpeg"}
	if len(got) != len(want) {
		t.Fatalf("want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("want %v got %v", want, got)
		}
	}
	only, _ := l.ListImages([]string{"gif"})
	if len(only) != 1 || only[0] != "d.gif" {
		t.Fatalf("custom extensions not honored: %v", only)
	}
}

func TestLabelPath_ReplacesExtension(t *testing.T) {
	l := NewLayout("/data")
	cases := map[string]string{
		"img.jpg":       filepath.Join("/data", "labels", "img.txt"),
		"a.b.jpeg":      filepath.Join("/data", "labels", "a.b.txt"),
		"photo.PNG":     filepath.Join("/data", "labels", "photo.txt"),
		"jpg_image.png": filepath.Join("/data", "labels", "jpg_image.txt"),
	}
	for in, want := range cases {
		if got := l.LabelPath(in); got != want {
			t.Fatalf("LabelPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMoveToNull_LeavesLabelFile(t *testing.T) {
	l := NewLayout(t.TempDir())
	writeFile(t, l.ImagePath("x.png"), "pixels")
	writeFile(t, l.LabelPath("x.png"), "0 0.5 0.5 0.1 0.1\n")
	if err := l.MoveToNull("x.png"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := os.Stat(l.ImagePath("x.png")); !os.IsNotExist(err) {
		t.Fatalf("image still in images dir: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(l.Null, "x.png"))
	if err != nil || string(data) != "pixels" {
		t.Fatalf("image not relocated intact: %q %v", data, err)
	}
	if _, err := os.Stat(l.LabelPath("x.png")); err != nil {
		t.Fatalf("label file must stay: %v", err)
	}
}

func TestRelocate_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a", "img.png")
	dst := filepath.Join(root, "b")
	writeFile(t, src, "new")
	writeFile(t, filepath.Join(dst, "img.png"), "old")
	if err := Relocate(src, dst); err == nil {
		t.Fatalf("expected error when destination exists")
	}
	if data, _ := os.ReadFile(filepath.Join(dst, "img.png")); string(data) != "old" {
		t.Fatalf("destination overwritten")
	}
}
