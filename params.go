package atl

import "github.com/rs/zerolog"

// SizeInfo is the pre-computed size summary the caller hands in alongside
// a file handle: the engine does not parse ID3v2 itself, it trusts the
// supplied leading-region length.
type SizeInfo struct {
	FileSize  int64
	ID3v2Size int64
}

// DataClass is the 1-byte discriminator inside an ilst "data" atom that
// selects the encoding of its payload.
type DataClass uint8

const (
	DataClassUTF8      DataClass = 1
	DataClassJPEG      DataClass = 13
	DataClassPNG       DataClass = 14
	DataClassUint8     DataClass = 21
	DataClassReserved0 DataClass = 0 // trkn/disk/gnre packed-number encodings
)

// TagKind identifies which tag standard a query or callback concerns.
// The MP4 tag engine only ever produces TagKindMP4 records itself, but
// IsMetaSupported also reports on the sibling standards it defers to.
type TagKind uint8

const (
	TagKindMP4 TagKind = iota
	TagKindID3v1
	TagKindID3v2
	TagKindAPE
)

// PictureSink receives each embedded picture as it is decoded during a
// Read. It is invoked synchronously on the goroutine performing the read
// and must not retain the reader; the byte slice it receives is owned by
// the sink once delivered.
type PictureSink func(
	data []byte,
	semantic PictureSemanticType,
	format PictureFormat,
	source TagKind,
	class DataClass,
	positionIndex int,
)

// ReadParams carries the configuration for a single Read call.
type ReadParams struct {
	// ReadTag requests that the tag record be populated at all; when
	// false only the TechnicalDescriptor is produced.
	ReadTag bool
	// ReadAllMetaFrames requests that unmapped native atoms be
	// accumulated into TagRecord.AdditionalFields rather than skipped.
	ReadAllMetaFrames bool
	// PrepareForWriting requests that the positions of moov/udta/meta
	// (and ilst, once found) be recorded into a WriteContext for a
	// subsequent Write + RewriteFileSizeInHeader pass.
	PrepareForWriting bool
	// PictureSink, if non-nil, receives each embedded picture as it is
	// decoded.
	PictureSink PictureSink
	// Logger, if non-nil, receives debug-level MP4 box-walk and picture
	// diagnostics. A nil Logger disables tracing entirely.
	Logger *zerolog.Logger
}

// EffectiveLogger returns params.Logger dereferenced, or a no-op logger
// when unset, so callers never need a nil check of their own.
func (p ReadParams) EffectiveLogger() zerolog.Logger {
	if p.Logger != nil {
		return *p.Logger
	}

	return zerolog.Nop()
}

// UpperAtomEntry is one recorded enclosing-atom position: the absolute
// file offset of that atom's 32-bit size field, and the atom's size at
// the time it was read.
type UpperAtomEntry struct {
	Offset int64
	Size   uint32
}

// UpperAtomTable is the ordered list of enclosing-atom positions recorded
// during a write-prepared Read, consumed once by RewriteFileSizeInHeader.
type UpperAtomTable []UpperAtomEntry

// WriteContext carries the bookkeeping a write-prepared Read produced:
// where the ilst box lives in the original file, and which enclosing
// atoms' size fields must be cascaded after a size-changing edit.
type WriteContext struct {
	// IlstOffset is the absolute offset of the ilst box's size field (its
	// header start). The caller splices the bytes from Write at this
	// position, replacing exactly IlstSize bytes.
	IlstOffset int64
	// IlstSize is the ilst box's total size (header included) as it
	// existed at read time; 0 if no tag existed yet.
	IlstSize uint32
	// UpperAtoms holds moov/udta/meta (and ilst, if it already existed)
	// in that order.
	UpperAtoms UpperAtomTable
}
