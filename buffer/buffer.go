// Package buffer implements the bounded output buffer every execution
// strategy writes minified bytes through (spec component C3): a fixed
// capacity, a write cursor, and a flush-to-sink contract so that ECO's
// working memory stays independent of input size.
package buffer

import "io"

// DefaultCapacity is the output buffer size used when none is given
// explicitly (spec §4.3, §9: "output buffer (default 64 KiB)").
const DefaultCapacity = 64 * 1024

// Buffer is a fixed-capacity byte buffer that flushes to an io.Writer
// sink once full. A write larger than the remaining capacity first
// flushes any buffered bytes; if it is also larger than the whole
// capacity it then bypasses the buffer and streams directly to the
// sink, so a Buffer never grows beyond its configured capacity.
type Buffer struct {
	w      io.Writer
	buf    []byte
	cursor int
}

// New constructs a Buffer with the given capacity writing to w. A
// capacity of 0 uses DefaultCapacity.
func New(w io.Writer, capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{w: w, buf: make([]byte, capacity)}
}

// Len reports the number of buffered, unflushed bytes.
func (b *Buffer) Len() int { return b.cursor }

// Cap reports the buffer's fixed capacity.
func (b *Buffer) Cap() int { return len(b.buf) }

// WriteByte implements state.Sink, flushing first if the buffer is
// full.
func (b *Buffer) WriteByte(c byte) error {
	if b.cursor == len(b.buf) {
		if err := b.Flush(); err != nil {
			return err
		}
	}
	b.buf[b.cursor] = c
	b.cursor++
	return nil
}

// Write implements io.Writer. A write that would overflow the buffer
// flushes what is already buffered, then either copies into the
// now-empty buffer (if it fits) or streams directly to the sink,
// bypassing the buffer entirely, per spec §4.3.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if b.cursor+len(p) <= len(b.buf) {
		n = copy(b.buf[b.cursor:], p)
		b.cursor += n
		return n, nil
	}
	if err := b.Flush(); err != nil {
		return 0, err
	}
	if len(p) > len(b.buf) {
		return b.w.Write(p)
	}
	n = copy(b.buf[b.cursor:], p)
	b.cursor += n
	return n, nil
}

// Flush writes any buffered bytes to the sink and resets the cursor
// to zero.
func (b *Buffer) Flush() error {
	if b.cursor == 0 {
		return nil
	}
	_, err := b.w.Write(b.buf[:b.cursor])
	b.cursor = 0
	return err
}

// Discard is a Buffer-shaped sink that counts bytes without storing
// them, used by the validator shim (package validate) so that
// strict-mode validation never allocates an output buffer.
type Discard struct {
	n int64
}

// WriteByte implements state.Sink.
func (d *Discard) WriteByte(byte) error {
	d.n++
	return nil
}

// Write implements io.Writer for parity with Buffer, in case a
// component is parameterized over io.Writer rather than state.Sink.
func (d *Discard) Write(p []byte) (int, error) {
	d.n += int64(len(p))
	return len(p), nil
}

// Len reports the number of bytes written so far.
func (d *Discard) Len() int64 { return d.n }
