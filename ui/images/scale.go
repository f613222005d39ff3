package images

import (
	"bytes"
	"image"
	"image/png"
)

// the canvas is re-encoded on every pointer move; speed matters more than size
var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = encoder.Encode(&buf, img)
	return buf.Bytes()
}
