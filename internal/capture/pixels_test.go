package capture

import (
	"bytes"
	"testing"
)

func TestBGRXToRGBA(t *testing.T) {
	src := []byte{
		0x01, 0x02, 0x03, 0x00, // B G R X
		0xFF, 0x00, 0x80, 0x7F,
	}
	dst := make([]byte, len(src))
	bgrxToRGBA(dst, src)
	want := []byte{
		0x03, 0x02, 0x01, 0xFF,
		0x80, 0x00, 0xFF, 0xFF,
	}
	if !bytes.Equal(dst, want) {
		t.Fatalf("got % x, want % x", dst, want)
	}
}
