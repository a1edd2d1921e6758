// Package engine dispatches a recognized stream to the AAC analyzer or the
// MP4 box walker and tag engine, and exposes the write-back entry points.
// It exists separately from the root atl package so that atl can stay a
// pure leaf package of shared types: both aac and mp4 import atl, and
// something has to sit above both to call into either — that something
// cannot be atl itself without an import cycle.
package engine

import (
	"fmt"
	"io"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/aac"
	"github.com/farcloser/atl/internal/ioreader"
	"github.com/farcloser/atl/mp4"
)

// Read recognizes the stream's header kind and dispatches to the AAC
// analyzer or the MP4 tag engine, per spec.md §6.
func Read(
	rs io.ReadSeeker,
	size atl.SizeInfo,
	params atl.ReadParams,
) (atl.TechnicalDescriptor, *atl.TagRecord, *atl.WriteContext, error) {
	r := ioreader.New(rs)

	kind, err := aac.Recognize(r, size.ID3v2Size)
	if err != nil {
		return atl.TechnicalDescriptor{}, nil, nil, err
	}

	desc := atl.TechnicalDescriptor{HeaderKind: kind}

	switch kind {
	case atl.HeaderADIF:
		if err := aac.DecodeADIF(r, size.ID3v2Size, &desc); err != nil {
			return desc, nil, nil, err
		}

		applyRawStreamDuration(&desc, size)

		return desc, atl.NewTagRecord(), nil, nil

	case atl.HeaderADTS:
		if err := aac.DecodeADTS(r, size.ID3v2Size, &desc); err != nil {
			return desc, nil, nil, err
		}

		applyRawStreamDuration(&desc, size)

		return desc, atl.NewTagRecord(), nil, nil

	case atl.HeaderMP4:
		return mp4.Read(r, size, params)

	default:
		return desc, atl.NewTagRecord(), nil, nil
	}
}

// applyRawStreamDuration fills in duration for raw ADIF/ADTS streams from
// the overall bit rate, per spec.md §4.2: duration_sec = 8*(file_size -
// id3v2_size) / bit_rate when bit_rate > 0, else 0.
func applyRawStreamDuration(desc *atl.TechnicalDescriptor, size atl.SizeInfo) {
	if desc.BitRateBps <= 0 {
		return
	}

	desc.DurationSec = 8 * float64(size.FileSize-size.ID3v2Size) / desc.BitRateBps
}

// Write produces a fresh "ilst" payload for tag and writes it to w. The
// caller splices the result into the original file at the offset recorded
// in a prior write-prepared Read's WriteContext, then calls
// RewriteFileSizeInHeader to cascade the resulting size delta.
func Write(tag *atl.TagRecord, w io.Writer) error {
	return mp4.Write(tag, w)
}

// RewriteFileSizeInHeader cascades a write's size delta through every
// enclosing atom recorded in ctx.
func RewriteFileSizeInHeader(w io.WriteSeeker, ctx *atl.WriteContext, delta int64) error {
	if ctx == nil {
		return ErrNilWriteContext
	}

	return mp4.RewriteFileSizeInHeader(w, ctx, delta)
}

// IsMetaSupported reports whether the given tag standard carries native
// support in this engine (MP4) or is understood to be the responsibility
// of a sibling engine (ID3v1, ID3v2, APE), per spec.md §6.
func IsMetaSupported(kind atl.TagKind) bool {
	switch kind {
	case atl.TagKindMP4, atl.TagKindID3v1, atl.TagKindID3v2, atl.TagKindAPE:
		return true
	default:
		return false
	}
}

// HasNativeMeta reports that this engine's native tag convention is the
// MP4 moov/udta/meta/ilst region.
func HasNativeMeta() bool {
	return true
}

// ErrNilWriteContext is returned by RewriteFileSizeInHeader when it is
// given a nil WriteContext, i.e. no write-prepared Read was performed first.
var ErrNilWriteContext = fmt.Errorf("engine: no write context: perform a Read with PrepareForWriting first")
