// Package binread provides a bounds-checked cursor over an in-memory byte span.
//
// Every read either succeeds completely or returns an error wrapping
// ErrShortBuffer; the cursor never reads past the span and never pads.
package binread

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortBuffer indicates a read past the end of the span.
	ErrShortBuffer = errors.New("unexpected end of data")
	// ErrBadSeek indicates a seek outside the span.
	ErrBadSeek = errors.New("seek out of range")
)

// Reader reads fixed-width values from a byte slice.
type Reader struct {
	buf   []byte
	off   int
	order binary.ByteOrder
}

// NewBigEndian returns a big-endian reader over buf.
func NewBigEndian(buf []byte) *Reader {
	return &Reader{buf: buf, order: binary.BigEndian}
}

// NewLittleEndian returns a little-endian reader over buf.
func NewLittleEndian(buf []byte) *Reader {
	return &Reader{buf: buf, order: binary.LittleEndian}
}

// Offset returns the current position.
func (r *Reader) Offset() int { return r.off }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.off }

// Size returns the length of the underlying span.
func (r *Reader) Size() int { return len(r.buf) }

// Seek moves the cursor to an absolute offset. off == Size() is allowed.
func (r *Reader) Seek(off int) error {
	if off < 0 || off > len(r.buf) {
		return fmt.Errorf("%w: %d (size %d)", ErrBadSeek, off, len(r.buf))
	}
	r.off = off
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Len() {
		return r.short(n)
	}
	r.off += n
	return nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.short(n)
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b, nil
}

// Rest returns all unread bytes and moves the cursor to the end.
func (r *Reader) Rest() []byte {
	b := r.buf[r.off:len(r.buf):len(r.buf)]
	r.off = len(r.buf)
	return b
}

// Sub returns a reader over the next n bytes and advances past them.
func (r *Reader) Sub(n int) (*Reader, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return nil, err
	}
	return &Reader{buf: b, order: r.order}, nil
}

// Peek returns the next n bytes without advancing.
func (r *Reader) Peek(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.short(n)
	}
	return r.buf[r.off : r.off+n : r.off+n], nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	if r.Len() < 1 {
		return 0, r.short(1)
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

// U16 reads a 16-bit unsigned value.
func (r *Reader) U16() (uint16, error) {
	b, err := r.Bytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// I16 reads a 16-bit signed value.
func (r *Reader) I16() (int16, error) {
	v, err := r.U16()
	return int16(v), err //nolint:gosec // two's complement reinterpretation
}

// U32 reads a 32-bit unsigned value.
func (r *Reader) U32() (uint32, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// I32 reads a 32-bit signed value.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err //nolint:gosec // two's complement reinterpretation
}

// U64 reads a 64-bit unsigned value.
func (r *Reader) U64() (uint64, error) {
	b, err := r.Bytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(b), nil
}

// FourCC reads a four character code as a string.
func (r *Reader) FourCC() (string, error) {
	b, err := r.Bytes(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *Reader) short(n int) error {
	return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, r.Len())
}
