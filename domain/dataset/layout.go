package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the image types picked up from the images directory.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png"}

// Layout locates the directories of a dataset root:
//
//	<root>/images  input images
//	<root>/labels  one .txt label file per annotated image
//	<root>/null    images marked as containing nothing of interest
type Layout struct {
	Root   string
	Images string
	Labels string
	Null   string
}

// NewLayout derives the standard layout below root.
func NewLayout(root string) Layout {
	return Layout{
		Root:   root,
		Images: filepath.Join(root, "images"),
		Labels: filepath.Join(root, "labels"),
		Null:   filepath.Join(root, "null"),
	}
}

// Ensure checks the images directory and creates labels/ and null/ when absent.
func (l Layout) Ensure() error {
	info, err := os.Stat(l.Images)
	if err != nil {
		return fmt.Errorf("images directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("images directory: %s is not a directory", l.Images)
	}
	for _, dir := range []string{l.Labels, l.Null} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ListImages returns the sorted base names of images whose extension is in exts
// (case-insensitive). A nil exts uses DefaultExtensions.
func (l Layout) ListImages(exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		allowed[e] = true
	}
	entries, err := os.ReadDir(l.Images)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if allowed[strings.ToLower(filepath.Ext(ent.Name()))] {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ImagePath returns the full path of image name.
func (l Layout) ImagePath(name string) string { return filepath.Join(l.Images, name) }

// LabelPath returns the label file path for image name: same basename, .txt extension.
func (l Layout) LabelPath(name string) string {
	base := filepath.Base(name)
	return filepath.Join(l.Labels, strings.TrimSuffix(base, filepath.Ext(base))+".txt")
}

// MoveToNull relocates image name into the null directory. Its label file is not touched.
func (l Layout) MoveToNull(name string) error {
	if err := os.MkdirAll(l.Null, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", l.Null, err)
	}
	return Relocate(l.ImagePath(name), l.Null)
}

// Relocate moves src into destDir keeping its base name. Renames that cross devices fall
// back to copy and remove.
func Relocate(src, destDir string) error {
	dst := filepath.Join(destDir, filepath.Base(src))
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("relocate %s: %s already exists", src, dst)
	}
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) {
		return err
	}
	if _, statErr := os.Stat(src); statErr != nil {
		return err
	}
	if cerr := copyFile(src, dst); cerr != nil {
		return fmt.Errorf("relocate %s: %w", src, cerr)
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
