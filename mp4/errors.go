package mp4

import "errors"

// ErrNotMP4 is returned when the leading bytes of a stream do not carry an
// "ftyp" box where one is required.
var ErrNotMP4 = errors.New("mp4: not an ISO-BMFF stream")

// ErrNoTrak is returned when a moov box contains no trak children at all.
var ErrNoTrak = errors.New("mp4: moov contains no trak boxes")

// ErrUnsupportedWriteSize is returned by a Read with PrepareForWriting set
// when moov, udta, meta or ilst uses an extended (64-bit) size field: this
// engine only supports rewriting the plain 32-bit size form (spec.md's resolved
// Open Question on extended-size boxes).
var ErrUnsupportedWriteSize = errors.New("mp4: cannot rewrite a box with an extended-size header")
