package images

import (
	"image"
	"image/color"
	"testing"
)

func TestCropBox_PadsAndClamps(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 100, 100))
	crop, rect, err := CropBox(frame, image.Rect(30, 30, 70, 70), 5)
	if err != nil || crop == nil {
		t.Fatalf("expected crop, got err=%v", err)
	}
	if rect != image.Rect(25, 25, 75, 75) {
		t.Fatalf("unexpected rect %v", rect)
	}
	if crop.Bounds() != image.Rect(0, 0, 50, 50) {
		t.Fatalf("crop must start at origin, got %v", crop.Bounds())
	}

	_, rect, err = CropBox(frame, image.Rect(95, -10, 2, 4), 4)
	if err != nil {
		t.Fatalf("crop error: %v", err)
	}
	if rect.Min.X != 0 || rect.Min.Y != 0 || rect.Max.X != 99 || rect.Max.Y != 8 {
		t.Fatalf("expected canonical rect clamped to frame, got %v", rect)
	}
}

func TestCropBox_CopiesPixels(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 20, 20))
	frame.SetRGBA(10, 10, color.RGBA{R: 255, A: 255})
	crop, _, err := CropBox(frame, image.Rect(8, 8, 12, 12), 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := crop.RGBAAt(2, 2); got.R != 255 {
		t.Fatalf("expected red pixel at (2,2), got %v", got)
	}
}

func TestCropBox_Errors(t *testing.T) {
	if _, _, err := CropBox(nil, image.Rect(0, 0, 1, 1), 0); err == nil {
		t.Fatalf("expected error for nil frame")
	}
	frame := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if _, _, err := CropBox(frame, image.Rect(50, 50, 60, 60), 0); err == nil {
		t.Fatalf("expected error for box outside frame")
	}
}

func TestThumbnail_FitsBounds(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 800, 600))
	thumb, err := Thumbnail(frame, image.Rect(0, 0, 800, 400), 160, 120)
	if err != nil {
		t.Fatal(err)
	}
	b := thumb.Bounds()
	if b.Dx() > 160 || b.Dy() > 120 {
		t.Fatalf("thumbnail too large: %v", b)
	}
	small, _ := Thumbnail(frame, image.Rect(10, 10, 30, 30), 160, 120)
	if small.Bounds().Dx() != 28 {
		t.Fatalf("small crops are not scaled, got %v", small.Bounds())
	}
}
