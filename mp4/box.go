// Package mp4 walks and rewrites ISO-BMFF box trees: the moov/udta/meta/ilst
// tag region (C3 Box Walker and C4 MP4 Tag Engine).
package mp4

import (
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// boxHeaderSize is the minimum box header: 4-byte size + 4-byte type.
const boxHeaderSize = 8

// extendedSizeMarker is the size value that signals a following 8-byte
// largesize field (spec.md §4.3).
const extendedSizeMarker = 1

// toEOFMarker is the size value that means "this box extends to end of
// file", used by top-level mdat boxes in particular.
const toEOFMarker = 0

// maxSiblingScan bounds how many sibling boxes LookFor will step over
// before giving up, so a corrupt size field cannot spin the walker
// forever.
const maxSiblingScan = 100

// Box is one parsed box header: its type tag, the absolute offset of its
// header (the size field), the absolute offset its payload starts at, and
// its total size (header + payload) including any extended-size field.
type Box struct {
	Type         string
	HeaderOffset int64
	PayloadStart int64
	TotalSize    int64
	// SizeFieldWidth is 4 for a plain 32-bit size, or 12 (4-byte marker +
	// 8-byte largesize) for an extended-size box. Only 4 is supported for
	// writing (spec.md's resolved Open Question: read-support only for
	// extended sizes).
	SizeFieldWidth int
}

// PayloadEnd returns the absolute offset one past this box's payload.
func (b Box) PayloadEnd() int64 {
	return b.HeaderOffset + b.TotalSize
}

// PayloadSize returns the number of payload bytes, excluding the header.
func (b Box) PayloadSize() int64 {
	return b.TotalSize - int64(b.SizeFieldWidth) - 4
}

// ReadBoxHeader reads one box header at the reader's current position,
// handling both the extended-size (size==1) and to-EOF (size==0) forms.
// fileSize is required to resolve a to-EOF box's total size.
func ReadBoxHeader(r *ioreader.Reader, fileSize int64) (Box, error) {
	headerOffset, err := r.Tell()
	if err != nil {
		return Box{}, err
	}

	size32, err := r.ReadU32BE()
	if err != nil {
		return Box{}, fmt.Errorf("mp4: reading box size at %d: %w", headerOffset, err)
	}

	typeTag, err := r.ReadLatin1(4)
	if err != nil {
		return Box{}, fmt.Errorf("mp4: reading box type at %d: %w", headerOffset+4, err)
	}

	box := Box{
		Type:           typeTag,
		HeaderOffset:   headerOffset,
		SizeFieldWidth: 4,
	}

	switch size32 {
	case extendedSizeMarker:
		large, err := r.ReadU64BE()
		if err != nil {
			return Box{}, fmt.Errorf("mp4: reading largesize at %d: %w", headerOffset+8, err)
		}

		box.SizeFieldWidth = 12
		box.TotalSize = int64(large) //nolint:gosec // box sizes never approach int64 overflow in practice.
	case toEOFMarker:
		box.TotalSize = fileSize - headerOffset
	default:
		box.TotalSize = int64(size32)
	}

	box.PayloadStart = headerOffset + int64(box.SizeFieldWidth) + 4

	if box.TotalSize < int64(box.SizeFieldWidth)+4 {
		return Box{}, fmt.Errorf("mp4: box %q at %d has implausible size %d", typeTag, headerOffset, box.TotalSize)
	}

	return box, nil
}

// LookFor scans sibling boxes starting at rangeStart, within
// [rangeStart, rangeEnd), for one whose type matches key. On
// success the reader is left positioned at the start of the matching
// box's payload and the matching Box is returned. LookFor does not
// recurse: the caller descends into container boxes by re-invoking
// LookFor with a narrowed range.
func LookFor(r *ioreader.Reader, key string, rangeStart, rangeEnd, fileSize int64) (Box, error) {
	if err := r.Seek(rangeStart); err != nil {
		return Box{}, err
	}

	pos := rangeStart

	for scanned := 0; scanned < maxSiblingScan && pos < rangeEnd; scanned++ {
		if err := r.Seek(pos); err != nil {
			return Box{}, err
		}

		box, err := ReadBoxHeader(r, fileSize)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return Box{}, atl.ErrAtomNotFound
			}

			return Box{}, err
		}

		if box.Type == key {
			if err := r.Seek(box.PayloadStart); err != nil {
				return Box{}, err
			}

			return box, nil
		}

		if box.TotalSize <= 0 {
			return Box{}, fmt.Errorf("mp4: box %q at %d has non-positive size, cannot advance", box.Type, box.HeaderOffset)
		}

		pos = box.PayloadEnd()
	}

	return Box{}, atl.ErrAtomNotFound
}

// AllSiblings scans every sibling box in [rangeStart, rangeEnd) and
// returns them in order, without requiring a type match. Used by AllTraks
// to enumerate every trak under moov.
func AllSiblings(r *ioreader.Reader, rangeStart, rangeEnd, fileSize int64) ([]Box, error) {
	var boxes []Box

	pos := rangeStart

	for scanned := 0; scanned < maxSiblingScan && pos < rangeEnd; scanned++ {
		if err := r.Seek(pos); err != nil {
			return nil, err
		}

		box, err := ReadBoxHeader(r, fileSize)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, err
		}

		boxes = append(boxes, box)

		if box.TotalSize <= 0 {
			return nil, fmt.Errorf("mp4: box %q at %d has non-positive size, cannot advance", box.Type, box.HeaderOffset)
		}

		pos = box.PayloadEnd()
	}

	return boxes, nil
}
