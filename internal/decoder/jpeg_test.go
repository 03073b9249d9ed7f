package decoder

import (
	"bytes"
	"image"
	"image/jpeg"
	"testing"
)

func TestDecodeConvertsToRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for i := range src.Pix {
		src.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}

	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 64, 48) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	c := img.RGBAAt(10, 10)
	if d := int(c.R) - 0x80; d < -4 || d > 4 {
		t.Fatalf("pixel = %v, want about gray 0x80", c)
	}
	if c.A != 0xFF {
		t.Fatalf("alpha = %d", c.A)
	}

	w, h, err := Size(buf.Bytes())
	if err != nil || w != 64 || h != 48 {
		t.Fatalf("Size = %d, %d, %v", w, h, err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not a jpeg")); err == nil {
		t.Fatal("expected error")
	}
	if _, _, err := Size(nil); err == nil {
		t.Fatal("expected error")
	}
}
