package annotate

import (
	"errors"
	"fmt"

	"github.com/soocke/boxlabel-go/domain/annotation"
)

// Start scans the images directory and opens the first image. ErrNoImages is returned
// when there is nothing to annotate.
func (c *Controller) Start() error {
	if err := c.layout.Ensure(); err != nil {
		return err
	}
	names, err := c.layout.ListImages(c.cfg.ImageExtensions)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	c.images = names
	if c.logger != nil {
		c.logger.Info("dataset opened", "root", c.layout.Root, "images", len(names))
	}
	if len(names) == 0 {
		return ErrNoImages
	}
	return c.load(0)
}

// Open saves the current image and shows the image at index.
func (c *Controller) Open(index int) error {
	if c.state != StateIdle {
		return nil
	}
	if index < 0 || index >= len(c.images) {
		return fmt.Errorf("image index %d out of range [0,%d)", index, len(c.images))
	}
	if err := c.save(); err != nil {
		return err
	}
	return c.load(index)
}

// Next saves and moves to the following image. moved is false at the last image, which is
// the informational "no more images" outcome and not an error.
func (c *Controller) Next() (moved bool, err error) {
	return c.step(1)
}

// Prev saves and moves to the preceding image; moved is false at the first image.
func (c *Controller) Prev() (moved bool, err error) {
	return c.step(-1)
}

func (c *Controller) step(delta int) (bool, error) {
	if c.state != StateIdle {
		return false, nil
	}
	idx := c.session.ImageIndex + delta
	if idx < 0 || idx >= len(c.images) {
		return false, nil
	}
	if err := c.save(); err != nil {
		return false, err
	}
	return true, c.load(idx)
}

// MarkNull moves the current image to the null directory, drops it from the working set
// and shows the image that took its place. Its label file stays where it is. moved is
// false when no image is left.
func (c *Controller) MarkNull() (moved bool, err error) {
	name := c.CurrentImage()
	if c.state != StateIdle || name == "" {
		return false, nil
	}
	if err := c.layout.MoveToNull(name); err != nil {
		return false, fmt.Errorf("mark %s as null: %w", name, err)
	}
	if c.logger != nil {
		c.logger.Info("image marked null", "image", name)
	}
	idx := c.session.ImageIndex
	c.images = append(c.images[:idx], c.images[idx+1:]...)
	if len(c.images) == 0 {
		c.session.ImageIndex = 0
		c.set.Clear()
		c.frame = nil
		c.locked = false
		return false, nil
	}
	if idx >= len(c.images) {
		idx = len(c.images) - 1
	}
	return true, c.load(idx)
}

// load makes index current: labels first, then the rendered frame. Both failures are
// reported together; the index changes either way so the session can continue.
func (c *Controller) load(index int) error {
	name := c.images[index]
	c.session.ImageIndex = index
	c.locked = false
	var errs []error

	res, err := c.codec.Load(c.layout.LabelPath(name))
	if err != nil {
		c.set.Clear()
		c.locked = true
		if c.logger != nil {
			c.logger.Error("labels not loaded, editing disabled", "image", name, "error", err)
		}
		errs = append(errs, err)
	} else {
		c.set.Replace(res.Boxes)
		if created := c.registry.Reconcile(c.set.ClassIndices()); len(created) > 0 && c.logger != nil {
			c.logger.Info("placeholder classes created", "image", name, "classes", created)
		}
	}

	c.frame = nil
	if r := c.collab.Renderer; r != nil {
		path := c.layout.ImagePath(name)
		frame, err := r.RenderImage(path, c.cfg.CanvasWidth, c.cfg.CanvasHeight)
		if err != nil {
			if c.logger != nil {
				c.logger.Error("image not loaded", "path", path, "error", err)
			}
			errs = append(errs, &ImageLoadError{Path: path, Err: err})
		} else {
			c.frame = frame
		}
	}
	if c.logger != nil {
		c.logger.Debug("image opened", "image", name, "index", index, "boxes", c.set.Len())
	}
	return errors.Join(errs...)
}

func (c *Controller) save() error {
	name := c.CurrentImage()
	if name == "" || c.locked {
		return nil
	}
	if err := c.codec.Save(c.layout.LabelPath(name), c.set.All()); err != nil {
		return fmt.Errorf("save labels for %s: %w", name, err)
	}
	return nil
}

// persist writes the current set after a mutation.
func (c *Controller) persist() error {
	if err := c.save(); err != nil {
		if c.logger != nil {
			c.logger.Error("labels not saved", "image", c.CurrentImage(), "error", err)
		}
		return err
	}
	return nil
}

// Statistics counts annotated images and per-class image coverage over the active list.
// The current image is counted from memory; others are read from disk. Unknown indices are
// reported under placeholder names without being registered.
func (c *Controller) Statistics() Stats {
	st := Stats{TotalImages: len(c.images)}
	perClass := make(map[int]int)
	for i, name := range c.images {
		var indices []int
		if i == c.session.ImageIndex && !c.locked {
			indices = c.set.ClassIndices()
		} else {
			res, err := c.codec.Load(c.layout.LabelPath(name))
			if err != nil {
				st.Unreadable++
				continue
			}
			for _, b := range res.Boxes {
				indices = append(indices, b.Class)
			}
		}
		if len(indices) == 0 {
			continue
		}
		st.AnnotatedImages++
		seen := make(map[int]bool, len(indices))
		for _, idx := range indices {
			if !seen[idx] {
				seen[idx] = true
				perClass[idx]++
			}
		}
	}
	for _, cl := range c.registry.Classes() {
		st.Classes = append(st.Classes, ClassCount{Index: cl.Index, Name: cl.Name, Images: perClass[cl.Index]})
		delete(perClass, cl.Index)
	}
	for idx, n := range perClass {
		st.Classes = append(st.Classes, ClassCount{Index: idx, Name: annotation.PlaceholderName(idx), Images: n})
	}
	sortClassCounts(st.Classes)
	return st
}
