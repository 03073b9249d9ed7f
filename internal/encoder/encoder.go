package encoder

import "image"

// Canvas geometry expected by the display.
const (
	CanvasWidth  = 320
	CanvasHeight = 240
)

// Frame is a compressed canvas ready for transport. Its length is len(Frame).
type Frame []byte

// Encoder turns a captured image into a compressed canvas.
type Encoder interface {
	Encode(img image.Image) (Frame, error)
}
