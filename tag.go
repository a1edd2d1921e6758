package atl

// FieldID names one of the small fixed set of semantic tag fields this
// engine understands directly. Anything else observed in a container's
// native tag atoms is carried as an AdditionalField instead.
type FieldID uint8

const (
	Title FieldID = iota
	Album
	Artist
	Comment
	RecordingYear
	Genre
	TrackNumber
	DiscNumber
	Rating
	Composer
	GeneralDescription
	Copyright
	AlbumArtist

	fieldCount
)

func (f FieldID) String() string {
	switch f {
	case Title:
		return "Title"
	case Album:
		return "Album"
	case Artist:
		return "Artist"
	case Comment:
		return "Comment"
	case RecordingYear:
		return "RecordingYear"
	case Genre:
		return "Genre"
	case TrackNumber:
		return "TrackNumber"
	case DiscNumber:
		return "DiscNumber"
	case Rating:
		return "Rating"
	case Composer:
		return "Composer"
	case GeneralDescription:
		return "GeneralDescription"
	case Copyright:
		return "Copyright"
	case AlbumArtist:
		return "AlbumArtist"
	default:
		return "unknown"
	}
}

// PictureFormat is the sniffed image format of an embedded picture.
type PictureFormat uint8

const (
	PictureFormatUnknown PictureFormat = iota
	PictureJPEG
	PicturePNG
)

func (f PictureFormat) String() string {
	switch f {
	case PictureJPEG:
		return "JPEG"
	case PicturePNG:
		return "PNG"
	default:
		return "unknown"
	}
}

// PictureSemanticType classifies the role of an embedded picture (front
// cover, back cover, artist photo, ...). MP4 native tags carry only a
// single covr atom family with no semantic sub-typing, so the native MP4
// tag engine always reports SemanticCoverFront; the type exists so the
// PictureSink contract is shared with sibling (ID3v2/APE) engines that do
// distinguish them.
type PictureSemanticType uint8

const (
	SemanticCoverFront PictureSemanticType = iota
	SemanticCoverBack
	SemanticOther
)

// Picture is one embedded image extracted from a tag.
type Picture struct {
	Data   []byte
	Format PictureFormat
	Type   PictureSemanticType
}

// AdditionalField is a tag atom the engine does not map to a FieldID,
// identified by its native (container-specific) code. Fields are kept in
// an ordered slice rather than a map so re-encoding is deterministic.
type AdditionalField struct {
	NativeCode string
	Value      string
	// Delete marks the field for omission on the next Write, rather than
	// requiring callers to remove it from the slice themselves.
	Delete bool
}

// TagRecord is the mapping from semantic field identifiers to string
// values, plus fields this engine doesn't natively understand and any
// embedded pictures, for files using the ISO-BMFF moov/udta/meta/ilst
// metadata convention.
type TagRecord struct {
	fields           [fieldCount]string
	fieldPresent     [fieldCount]bool
	AdditionalFields []AdditionalField
	Pictures         []Picture
}

// NewTagRecord returns an empty TagRecord ready for reading into or
// building up for a Write.
func NewTagRecord() *TagRecord {
	return &TagRecord{}
}

// Get returns the value of a semantic field and whether it was set.
func (t *TagRecord) Get(id FieldID) (string, bool) {
	if id >= fieldCount {
		return "", false
	}

	return t.fields[id], t.fieldPresent[id]
}

// Set assigns a semantic field's value. An empty value still marks the
// field present; use Clear to remove it entirely.
func (t *TagRecord) Set(id FieldID, value string) {
	if id >= fieldCount {
		return
	}

	t.fields[id] = value
	t.fieldPresent[id] = true
}

// Clear removes a semantic field so it is omitted from the next Write.
func (t *TagRecord) Clear(id FieldID) {
	if id >= fieldCount {
		return
	}

	t.fields[id] = ""
	t.fieldPresent[id] = false
}

// TagExists reports whether any semantic field, additional field, or
// picture is present — mirroring the source engine's "empty ilst means no
// tag" rule (spec.md §7): an ilst payload of size 0 is not an error, it is
// simply the absence of a tag.
func (t *TagRecord) TagExists() bool {
	for _, present := range t.fieldPresent {
		if present {
			return true
		}
	}

	return len(t.AdditionalFields) > 0 || len(t.Pictures) > 0
}
