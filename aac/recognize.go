// Package aac analyzes raw AAC bitstreams (ADIF and ADTS framing) and
// recognizes whether a file begins with an ADIF header, an ADTS sync
// word, or an MP4/ISO-BMFF "ftyp" box, adapted from the teacher's
// whole-file codec sniffing in its detect package.
package aac

import (
	"errors"
	"io"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// adtsSyncHighNibble is the high nibble of the first ADTS sync byte: the
// full 12-bit syncword is 0xFFF, split across the first byte (all set)
// and the top 4 bits of the second.
const adtsSyncHighNibble = 0xF

// Recognize seeks past any leading ID3v2 region and inspects the next
// bytes to classify the stream, per spec.md §4.2.
func Recognize(r *ioreader.Reader, id3v2Size int64) (atl.HeaderKind, error) {
	if err := r.Seek(id3v2Size); err != nil {
		return atl.HeaderUnknown, err
	}

	h0, err := r.ReadBytes(4)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return atl.HeaderUnknown, nil
		}

		return atl.HeaderUnknown, err
	}

	switch {
	case string(h0) == "ADIF":
		return atl.HeaderADIF, nil
	case h0[0] == 0xFF && (h0[0]>>4) == adtsSyncHighNibble:
		return atl.HeaderADTS, nil
	}

	h1, err := r.ReadBytes(4)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return atl.HeaderUnknown, nil
		}

		return atl.HeaderUnknown, err
	}

	if string(h1) == "ftyp" {
		return atl.HeaderMP4, nil
	}

	return atl.HeaderUnknown, nil
}
