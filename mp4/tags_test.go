package mp4

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// rawBox32 builds a plain 32-bit-size box with the given type tag and
// payload, for constructing synthetic ilst entries directly against the
// unexported read path.
func rawBox32(tag string, payload []byte) []byte {
	buf := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(8+len(payload))) //nolint:gosec // test fixture.
	copy(buf[4:8], tag)
	copy(buf[8:], payload)

	return buf
}

func rawDataAtom(class atl.DataClass, payload []byte) []byte {
	inner := make([]byte, 0, 8+len(payload))
	inner = append(inner, 0, 0, 0, byte(class), 0, 0, 0, 0)
	inner = append(inner, payload...)

	return rawBox32("data", inner)
}

func rawEntry(code string, class atl.DataClass, payload []byte) []byte {
	return rawBox32(code, rawDataAtom(class, payload))
}

func newIlstReader(t *testing.T, entries ...[]byte) (*ioreader.Reader, Box) {
	t.Helper()

	var payload []byte
	for _, e := range entries {
		payload = append(payload, e...)
	}

	ilst := rawBox32("ilst", payload)
	r := ioreader.New(bytes.NewReader(ilst))

	box, err := ReadBoxHeader(r, int64(len(ilst)))
	if err != nil {
		t.Fatalf("ReadBoxHeader: %v", err)
	}

	return r, box
}

func TestReadTagFramesTextAndUint8(t *testing.T) {
	r, ilst := newIlstReader(t,
		rawEntry("\xa9nam", atl.DataClassUTF8, []byte("Hello")),
		rawEntry("rtng", atl.DataClassUint8, []byte{4}),
	)

	tag := atl.NewTagRecord()

	if err := readTagFrames(r, ilst, ilst.PayloadEnd(), tag, atl.ReadParams{ReadTag: true}); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if got, ok := tag.Get(atl.Title); !ok || got != "Hello" {
		t.Errorf("Title = %q, %v, want %q, true", got, ok, "Hello")
	}

	if got, ok := tag.Get(atl.Rating); !ok || got != "4" {
		t.Errorf("Rating = %q, %v, want %q, true", got, ok, "4")
	}
}

func TestReadTagFramesPackedDiscNumber(t *testing.T) {
	payload := append(append([]byte{0, 0}, u16beTest(7)...), u16beTest(10)...)

	r, ilst := newIlstReader(t, rawEntry("disk", atl.DataClassReserved0, payload))

	tag := atl.NewTagRecord()
	if err := readTagFrames(r, ilst, ilst.PayloadEnd(), tag, atl.ReadParams{}); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if got, ok := tag.Get(atl.DiscNumber); !ok || got != "7" {
		t.Errorf("DiscNumber = %q, %v, want %q, true", got, ok, "7")
	}
}

func TestReadTagFramesGenreLookup(t *testing.T) {
	r, ilst := newIlstReader(t, rawEntry("gnre", atl.DataClassReserved0, u16beTest(1)))

	tag := atl.NewTagRecord()
	if err := readTagFrames(r, ilst, ilst.PayloadEnd(), tag, atl.ReadParams{}); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if got, ok := tag.Get(atl.Genre); !ok || got != "Blues" {
		t.Errorf("Genre = %q, %v, want %q, true", got, ok, "Blues")
	}
}

func TestReadTagFramesPNGSniffedWhenNotJPEGMagic(t *testing.T) {
	pngish := append([]byte{0x89, 0x50, 0x4E, 0x47}, []byte("...restofpng...")...)

	r, ilst := newIlstReader(t, rawEntry("covr", atl.DataClassPNG, pngish))

	tag := atl.NewTagRecord()

	var gotFormat atl.PictureFormat

	params := atl.ReadParams{
		PictureSink: func(_ []byte, _ atl.PictureSemanticType, format atl.PictureFormat, _ atl.TagKind, _ atl.DataClass, _ int) {
			gotFormat = format
		},
	}

	if err := readTagFrames(r, ilst, ilst.PayloadEnd(), tag, params); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if gotFormat != atl.PicturePNG {
		t.Errorf("sniffed format = %v, want PNG", gotFormat)
	}

	if len(tag.Pictures) != 1 || tag.Pictures[0].Format != atl.PicturePNG {
		t.Errorf("Pictures = %+v, want one PNG picture", tag.Pictures)
	}
}

func TestReadTagFramesUnmappedCodeGoesToAdditionalFields(t *testing.T) {
	r, ilst := newIlstReader(t, rawEntry("xtra", atl.DataClassUTF8, []byte("custom")))

	tag := atl.NewTagRecord()
	if err := readTagFrames(r, ilst, ilst.PayloadEnd(), tag, atl.ReadParams{ReadAllMetaFrames: true}); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if len(tag.AdditionalFields) != 1 || tag.AdditionalFields[0].NativeCode != "xtra" || tag.AdditionalFields[0].Value != "custom" {
		t.Errorf("AdditionalFields = %+v, want one xtra=custom", tag.AdditionalFields)
	}
}

func TestReadTagFramesUnmappedCodeSkippedWithoutReadAllMetaFrames(t *testing.T) {
	r, ilst := newIlstReader(t, rawEntry("xtra", atl.DataClassUTF8, []byte("custom")))

	tag := atl.NewTagRecord()
	if err := readTagFrames(r, ilst, ilst.PayloadEnd(), tag, atl.ReadParams{}); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if len(tag.AdditionalFields) != 0 {
		t.Errorf("AdditionalFields = %+v, want none", tag.AdditionalFields)
	}
}

func u16beTest(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)

	return b
}
