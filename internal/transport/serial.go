package transport

import (
	"fmt"
	"log/slog"

	"go.bug.st/serial"
)

// OpenSerialPort opens a serial device at baud, 8N1. The emulator uses the
// port for reading; the daemon wraps it in a Link.
func OpenSerialPort(path string, baud int) (serial.Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return port, nil
}

// OpenSerial opens a serial Link to the display.
func OpenSerial(path string, baud int, log *slog.Logger) (*Link, error) {
	port, err := OpenSerialPort(path, baud)
	if err != nil {
		return nil, err
	}
	return NewLink(path, port, log), nil
}
