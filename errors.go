package atl

import "errors"

// Sentinel errors surfaced through the "unsupported metadata handler" and
// "malformed container" taxonomies described in spec.md §7. mp4 and aac
// wrap these with fmt.Errorf("...: %w", ...) to add positional context.
var (
	// ErrMPEG7XMLMetadata is returned when a file's hdlr box declares the
	// MPEG-7 XML metadata handler ("mp7t"), which this engine refuses.
	ErrMPEG7XMLMetadata = errors.New("atl: does not support MPEG-7 XML metadata")
	// ErrMPEG7BinaryMetadata is returned for the MPEG-7 binary XML
	// metadata handler ("mp7b").
	ErrMPEG7BinaryMetadata = errors.New("atl: does not support MPEG-7 binary XML metadata")
	// ErrUnrecognizedMetadataFormat is returned when hdlr's metadata
	// handler type is neither "mdir" nor a recognized MPEG-7 variant.
	ErrUnrecognizedMetadataFormat = errors.New("atl: unrecognized metadata format")
	// ErrAtomNotFound is returned when a box walk exhausts its sibling
	// budget or runs past end-of-file without finding the requested type.
	ErrAtomNotFound = errors.New("atl: atom could not be found")
)
