package images

import (
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	lru "github.com/hashicorp/golang-lru/v2"

	// imaging registers jpeg, png, gif, bmp and tiff
	_ "golang.org/x/image/webp"
)

type frameKey struct {
	path          string
	width, height int
	modTime       time.Time
}

// Loader decodes images and resizes them to the canvas. Rendered frames are kept in a
// small LRU keyed by path, size and modification time so stepping back and forth does
// not decode again.
type Loader struct {
	cache  *lru.Cache[frameKey, *image.NRGBA]
	logger *slog.Logger
}

// NewLoader returns a loader caching up to size frames.
func NewLoader(size int, logger *slog.Logger) (*Loader, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[frameKey, *image.NRGBA](size)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache, logger: logger}, nil
}

// RenderImage decodes path honoring EXIF orientation and stretches it to width x height,
// matching how boxes are normalized against the canvas.
func (l *Loader) RenderImage(path string, width, height int) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	key := frameKey{path: path, width: width, height: height, modTime: info.ModTime()}
	if l.cache != nil {
		if img, ok := l.cache.Get(key); ok {
			return img, nil
		}
	}
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	dst := imaging.Resize(src, width, height, imaging.Linear)
	if l.cache != nil {
		l.cache.Add(key, dst)
	}
	if l.logger != nil {
		b := src.Bounds()
		l.logger.Debug("frame rendered",
			"path", path,
			"source", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
			"file", humanize.Bytes(uint64(info.Size())),
			"frame", humanize.IBytes(uint64(len(dst.Pix))),
		)
	}
	return dst, nil
}

// Cached returns the number of frames held.
func (l *Loader) Cached() int {
	if l == nil || l.cache == nil {
		return 0
	}
	return l.cache.Len()
}

// Purge drops every cached frame.
func (l *Loader) Purge() {
	if l != nil && l.cache != nil {
		l.cache.Purge()
	}
}
