package model

import (
	"image"
)

// HoverModel holds the canvas rectangle of the box under the pointer. Zero value means no
// box is hovered and is usable. Updates occur on the UI thread only.
type HoverModel struct {
	rect image.Rectangle
}

func NewHoverModel() *HoverModel { return &HoverModel{} }

// Set stores r and reports whether it differs from the previous value. An empty rectangle
// clears the hover.
func (m *HoverModel) Set(r image.Rectangle) bool {
	if m == nil {
		return false
	}
	if r.Empty() {
		r = image.Rectangle{}
	}
	if r == m.rect {
		return false
	}
	m.rect = r
	return true
}

// Rect returns the hovered rectangle (may be empty).
func (m *HoverModel) Rect() image.Rectangle {
	if m == nil {
		return image.Rectangle{}
	}
	return m.rect
}
