package capture

// bgrxToRGBA converts 32-bit BGRX/BGRA pixels, as GDI and X11 ZPixmap
// deliver them on little-endian hosts, into opaque RGBA.
func bgrxToRGBA(dst, src []byte) {
	for i := 0; i+3 < len(src) && i+3 < len(dst); i += 4 {
		dst[i+0] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i+0]
		dst[i+3] = 0xFF
	}
}
