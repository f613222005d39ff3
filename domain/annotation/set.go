package annotation

import "github.com/soocke/boxlabel-go/domain/geometry"

// Set is the ordered box collection of one image. Order is draw order: later boxes are
// painted on top. Boxes are held by pointer so callers can mutate them in place and
// remove them by identity. The zero value is an empty, usable set.
type Set struct {
	boxes []*geometry.Box
}

// NewSet returns a set holding boxes in the given order.
func NewSet(boxes ...*geometry.Box) *Set {
	s := &Set{}
	s.Replace(boxes)
	return s
}

// Add appends b. Geometrically identical boxes may coexist.
func (s *Set) Add(b *geometry.Box) {
	if s == nil || b == nil {
		return
	}
	s.boxes = append(s.boxes, b)
}

// Remove deletes b by identity and reports whether it was present. A missing box is a no-op.
func (s *Set) Remove(b *geometry.Box) bool {
	if s == nil || b == nil {
		return false
	}
	for i, cur := range s.boxes {
		if cur == b {
			s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops every box.
func (s *Set) Clear() {
	if s == nil {
		return
	}
	s.boxes = nil
}

// Replace swaps the whole content, used when another image's labels are loaded.
func (s *Set) Replace(boxes []*geometry.Box) {
	if s == nil {
		return
	}
	s.boxes = s.boxes[:0:0]
	for _, b := range boxes {
		if b != nil {
			s.boxes = append(s.boxes, b)
		}
	}
}

// All returns the boxes in order. The slice is a copy; the boxes are shared.
func (s *Set) All() []*geometry.Box {
	if s == nil || len(s.boxes) == 0 {
		return nil
	}
	out := make([]*geometry.Box, len(s.boxes))
	copy(out, s.boxes)
	return out
}

// Len returns the number of boxes.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.boxes)
}

// Contains reports whether b (by identity) is part of the set.
func (s *Set) Contains(b *geometry.Box) bool {
	if s == nil || b == nil {
		return false
	}
	for _, cur := range s.boxes {
		if cur == b {
			return true
		}
	}
	return false
}

// ClassIndices returns the class index of every box, in order.
func (s *Set) ClassIndices() []int {
	if s == nil {
		return nil
	}
	out := make([]int, 0, len(s.boxes))
	for _, b := range s.boxes {
		out = append(out, b.Class)
	}
	return out
}
