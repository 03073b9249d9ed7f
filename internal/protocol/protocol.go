package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// MaxLengthDigits bounds the length prefix a Reader accepts.
const MaxLengthDigits = 10

// MaxFrameSize bounds the payload a Reader allocates. A 320x240 JPEG is far
// smaller.
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned when the length prefix exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("protocol: frame too large")

// ErrLengthTooLong is returned when the digit run exceeds MaxLengthDigits.
var ErrLengthTooLong = errors.New("protocol: length prefix too long")

// ErrNoLength is returned when a frame does not start with a digit.
var ErrNoLength = errors.New("protocol: missing length prefix")

// AppendFrame appends the wire form of payload to dst: the payload length as
// ASCII decimal digits, immediately followed by the payload bytes. There is no
// delimiter; the device stops reading digits at the first non-digit byte.
func AppendFrame(dst, payload []byte) []byte {
	dst = strconv.AppendInt(dst, int64(len(payload)), 10)
	return append(dst, payload...)
}

// WriteFrame writes one frame to w with a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := AppendFrame(make([]byte, 0, len(payload)+MaxLengthDigits), payload)
	return writeFull(w, buf)
}

func writeFull(w io.Writer, buf []byte) error {
	for len(buf) > 0 {
		n, err := w.Write(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		buf = buf[n:]
	}
	return nil
}

// Reader parses a stream of frames as the display firmware does.
type Reader struct {
	br *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// ReadFrame returns the next payload. io.EOF is returned only at a clean
// frame boundary.
func (r *Reader) ReadFrame() ([]byte, error) {
	var n, digits int
	for {
		b, err := r.br.ReadByte()
		if err != nil {
			if err == io.EOF && digits > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if b < '0' || b > '9' {
			if err := r.br.UnreadByte(); err != nil {
				return nil, err
			}
			break
		}
		digits++
		if digits > MaxLengthDigits {
			return nil, ErrLengthTooLong
		}
		n = n*10 + int(b-'0')
	}
	if digits == 0 {
		return nil, ErrNoLength
	}
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("protocol: read %d byte payload: %w", n, err)
	}
	return payload, nil
}
