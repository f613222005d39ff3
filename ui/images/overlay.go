package images

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// BoxMark is one box to paint over the frame.
type BoxMark struct {
	Rect  image.Rectangle
	Color color.RGBA
	Label string
	Hover bool
}

// Overlay describes everything drawn on top of the frame.
type Overlay struct {
	Boxes []BoxMark
	// Band is the rubber band of a box being drawn; empty when none.
	Band image.Rectangle
	// Notice is printed in the top-left corner, e.g. when editing is disabled.
	Notice string
}

var (
	bandColor    = color.RGBA{R: 0xff, A: 0xff}
	missingColor = color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	noticeColor  = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
)

const (
	outlineWidth = 2
	hoverWidth   = 3
)

// Compose paints ov over base into a new width x height image. A nil base (image failed to
// load) yields a dark canvas so boxes can still be shown.
func Compose(base image.Image, width, height int, ov Overlay) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if base != nil {
		draw.Draw(dst, dst.Bounds(), base, base.Bounds().Min, draw.Src)
	} else {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(missingColor), image.Point{}, draw.Src)
	}
	for _, m := range ov.Boxes {
		w := outlineWidth
		if m.Hover {
			w = hoverWidth
		}
		strokeRect(dst, m.Rect.Canon(), w, m.Color)
		if m.Label != "" {
			drawTag(dst, m.Rect.Canon().Min, m.Label, m.Color)
		}
	}
	if !ov.Band.Empty() {
		strokeRect(dst, ov.Band.Canon(), 1, bandColor)
	}
	if ov.Notice != "" {
		drawTag(dst, image.Pt(2, 15), ov.Notice, noticeColor)
	}
	return dst
}

// strokeRect draws the outline of r inward by width pixels; drawing is clipped to dst.
func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	if width < 1 {
		width = 1
	}
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(r), src, image.Point{}, draw.Src)
	}
}

// drawTag writes text on a filled background above at, or just inside the box when
// there is no room above.
func drawTag(dst draw.Image, at image.Point, text string, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(textColorOn(bg)), Face: face}
	w := d.MeasureString(text).Ceil() + 4
	h := face.Height
	top := at.Y - h
	if top < dst.Bounds().Min.Y {
		top = at.Y
	}
	box := image.Rect(at.X, top, at.X+w, top+h)
	draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Src)
	d.Dot = fixed.P(at.X+2, top+face.Ascent)
	d.DrawString(text)
}

// textColorOn picks black or white, whichever reads better on bg.
func textColorOn(bg color.RGBA) color.Color {
	lum := 299*int(bg.R) + 587*int(bg.G) + 114*int(bg.B)
	if lum > 128*1000 {
		return color.Black
	}
	return color.White
}
