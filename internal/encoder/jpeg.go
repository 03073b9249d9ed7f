package encoder

import (
	"bytes"
	"image"
	"image/jpeg"
)

// DefaultQuality matches the quality most JPEG libraries use when none is given.
const DefaultQuality = jpeg.DefaultQuality

// JPEGEncoder encodes frames as baseline JPEG on the device canvas.
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	return &JPEGEncoder{quality: quality}
}

// Quality returns the configured quality.
func (e *JPEGEncoder) Quality() int {
	return e.quality
}

func (e *JPEGEncoder) Encode(img image.Image) (Frame, error) {
	canvas := Compose(img)
	var buf bytes.Buffer
	buf.Grow(32 * 1024) // a 320x240 canvas rarely exceeds this
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: e.quality}); err != nil {
		return nil, err
	}
	return Frame(buf.Bytes()), nil
}
