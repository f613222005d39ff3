package images

import (
	"errors"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
)

// CropBox copies the part of frame covered by r grown by pad on every side. The rectangle
// is clamped to the frame bounds and is at least 1x1. It returns the copy (origin at 0,0)
// and the clamped rectangle in frame coordinates.
func CropBox(frame image.Image, r image.Rectangle, pad int) (*image.RGBA, image.Rectangle, error) {
	if frame == nil {
		return nil, image.Rectangle{}, errors.New("nil frame")
	}
	b := frame.Bounds()
	r = r.Canon().Inset(-pad).Intersect(b)
	if r.Empty() {
		return nil, image.Rectangle{}, errors.New("box outside frame")
	}
	if r.Dx() < 1 {
		r.Max.X = r.Min.X + 1
	}
	if r.Dy() < 1 {
		r.Max.Y = r.Min.Y + 1
	}
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), frame, r.Min, draw.Src)
	return out, r, nil
}

// Thumbnail crops r out of frame and scales it down to fit maxW x maxH.
func Thumbnail(frame image.Image, r image.Rectangle, maxW, maxH int) (image.Image, error) {
	crop, _, err := CropBox(frame, r, 4)
	if err != nil {
		return nil, err
	}
	if crop.Bounds().Dx() <= maxW && crop.Bounds().Dy() <= maxH {
		return crop, nil
	}
	return imaging.Fit(crop, maxW, maxH, imaging.Box), nil
}
