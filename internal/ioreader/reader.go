// Package ioreader provides a seekable, random-access byte and bit reader
// over an io.ReadSeeker, matching the big-endian, byte-granular layout of
// ISO-BMFF boxes and ADIF/ADTS bitstreams.
package ioreader

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"
)

// Reader is a thin, seek-based random-access view over an audio file.
// It owns no buffering beyond what a single read needs. ReadBits seeks to
// its absolute bit offset itself; every other read continues from the
// current stream position, as set by Seek, Skip or a previous read.
type Reader struct {
	rs io.ReadSeeker
}

// New wraps rs for big-endian fixed-width and bit-level reads.
func New(rs io.ReadSeeker) *Reader {
	return &Reader{rs: rs}
}

// Seek positions the stream at an absolute byte offset.
func (r *Reader) Seek(absolute int64) error {
	pos, err := r.rs.Seek(absolute, io.SeekStart)
	if err != nil {
		return fmt.Errorf("ioreader: seeking to %d: %w", absolute, err)
	}

	if pos != absolute {
		return fmt.Errorf("ioreader: seek to %d landed at %d", absolute, pos)
	}

	return nil
}

// Tell returns the current absolute byte offset.
func (r *Reader) Tell() (int64, error) {
	pos, err := r.rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("ioreader: tell: %w", err)
	}

	return pos, nil
}

// Skip advances the stream by n bytes (n may be negative).
func (r *Reader) Skip(n int64) error {
	if _, err := r.rs.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("ioreader: skipping %d bytes: %w", n, err)
	}

	return nil
}

// ReadU8 reads a single unsigned byte.
func (r *Reader) ReadU8() (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r.rs, b[:]); err != nil {
		return 0, fmt.Errorf("ioreader: reading u8: %w", err)
	}

	return b[0], nil
}

// ReadU16BE reads a big-endian unsigned 16-bit integer.
func (r *Reader) ReadU16BE() (uint16, error) {
	var v uint16
	if err := binary.Read(r.rs, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("ioreader: reading u16: %w", err)
	}

	return v, nil
}

// ReadU32BE reads a big-endian unsigned 32-bit integer.
func (r *Reader) ReadU32BE() (uint32, error) {
	var v uint32
	if err := binary.Read(r.rs, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("ioreader: reading u32: %w", err)
	}

	return v, nil
}

// ReadU64BE reads a big-endian unsigned 64-bit integer.
func (r *Reader) ReadU64BE() (uint64, error) {
	var v uint64
	if err := binary.Read(r.rs, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("ioreader: reading u64: %w", err)
	}

	return v, nil
}

// ReadI32BE reads a big-endian signed 32-bit integer.
func (r *Reader) ReadI32BE() (int32, error) {
	v, err := r.ReadU32BE()
	if err != nil {
		return 0, err
	}

	return int32(v), nil //nolint:gosec // reinterpretation of the same 32 bits, not a truncation.
}

// ReadI64BE reads a big-endian signed 64-bit integer.
func (r *Reader) ReadI64BE() (int64, error) {
	v, err := r.ReadU64BE()
	if err != nil {
		return 0, err
	}

	return int64(v), nil //nolint:gosec // reinterpretation of the same 64 bits, not a truncation.
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.rs, buf); err != nil {
		return nil, fmt.Errorf("ioreader: reading %d bytes: %w", n, err)
	}

	return buf, nil
}

// ReadLatin1 reads n bytes and decodes them as ISO-8859-1, the encoding box
// tags and short MP4 identifiers are stored in.
func (r *Reader) ReadLatin1(n int) (string, error) {
	raw, err := r.ReadBytes(n)
	if err != nil {
		return "", err
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("ioreader: decoding latin-1: %w", err)
	}

	return string(decoded), nil
}

// maxBitRead is the widest single read supported by ReadBits: the 4-byte
// accumulator window only guarantees correctness up to 25 bits (a request
// spanning the full window plus a partial bit-shift can overflow beyond
// that). Nothing in ADIF/ADTS parsing asks for more than 23 bits at once.
const maxBitRead = 25

// ReadBits reads up to maxBitRead bits starting at an absolute bit offset
// and returns them right-aligned in the low bits of the result.
//
// Algorithm: seek to bitPosition/8, read 4 bytes into a big-endian 32-bit
// accumulator, left-shift by bitPosition%8 to drop the bits before the
// requested window, then right-shift by 32-count to drop the bits after it.
func (r *Reader) ReadBits(bitPosition int64, count uint) (uint32, error) {
	if count > maxBitRead {
		return 0, fmt.Errorf("ioreader: ReadBits count %d exceeds max %d", count, maxBitRead)
	}

	if count == 0 {
		return 0, nil
	}

	bytePos := bitPosition / 8
	bitOffset := uint(bitPosition % 8)

	if err := r.Seek(bytePos); err != nil {
		return 0, err
	}

	word, err := r.ReadU32BE()
	if err != nil {
		return 0, fmt.Errorf("ioreader: reading bit window at bit %d: %w", bitPosition, err)
	}

	word <<= bitOffset
	word >>= 32 - count

	return word, nil
}
