package mp4

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/farcloser/atl"
)

// Write encodes tag into a fresh "ilst" box (outer size header included)
// and writes it to w. The caller splices the result into the original
// file at the position recorded in a WriteContext from a prior
// write-prepared Read, then calls RewriteFileSizeInHeader to cascade the
// resulting size delta (spec.md §4.4's write path).
func Write(tag *atl.TagRecord, w io.Writer) error {
	var body bytes.Buffer

	for _, field := range allFieldIDsInDeclarationOrder() {
		value, ok := tag.Get(field)
		if !ok || value == "" {
			continue
		}

		for _, code := range nativeCodesByField[field] {
			if err := writeTextFrame(&body, code, value); err != nil {
				return err
			}
		}
	}

	for _, add := range tag.AdditionalFields {
		if add.Delete {
			continue
		}

		if err := writeTextFrame(&body, add.NativeCode, add.Value); err != nil {
			return err
		}
	}

	if err := writePictures(&body, tag.Pictures); err != nil {
		return err
	}

	var header [8]byte

	binary.BigEndian.PutUint32(header[:4], uint32(body.Len()+len(header))) //nolint:gosec // ilst box sizes are far under 4GiB.
	copy(header[4:], "ilst")

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("mp4: writing ilst header: %w", err)
	}

	if _, err := w.Write(body.Bytes()); err != nil {
		return fmt.Errorf("mp4: writing ilst body: %w", err)
	}

	return nil
}

// allFieldIDsInDeclarationOrder returns every semantic FieldID in the
// fixed order they're declared in, so Write's output is deterministic
// across calls with the same TagRecord.
func allFieldIDsInDeclarationOrder() []atl.FieldID {
	return []atl.FieldID{
		atl.Title, atl.Album, atl.Artist, atl.Comment, atl.RecordingYear,
		atl.Genre, atl.TrackNumber, atl.DiscNumber, atl.Rating, atl.Composer,
		atl.GeneralDescription, atl.Copyright, atl.AlbumArtist,
	}
}

// writeTextFrame emits one complete entry atom: outer size, the 4-char
// native code, and an inner "data" atom whose payload is encoded
// according to the code's declared data_class.
func writeTextFrame(w *bytes.Buffer, code, value string) error {
	start := w.Len()

	w.Write(make([]byte, 4)) // outer size placeholder
	w.WriteString(code)

	dataStart := w.Len()

	w.Write(make([]byte, 4)) // inner (data atom) size placeholder
	w.WriteString("data")

	class := classForNativeCode(code)

	var classBytes [4]byte

	binary.BigEndian.PutUint32(classBytes[:], uint32(class))
	w.Write(classBytes[:])
	w.Write(make([]byte, 4)) // flags, always zero

	if err := writeFramePayload(w, code, class, value); err != nil {
		return err
	}

	patchSize(w, dataStart, w.Len()-dataStart)
	patchSize(w, start, w.Len()-start)

	return nil
}

// writeFramePayload emits the data atom's payload for one declared class.
func writeFramePayload(w *bytes.Buffer, code string, class atl.DataClass, value string) error {
	switch {
	case class == atl.DataClassReserved0 && packedNumberCodes[code]:
		n, _ := strconv.ParseUint(value, 10, 16) //nolint:errcheck // malformed values encode as 0, matching silent-skip policy.

		var buf [2]byte

		w.Write(buf[:]) // leading u16 zero

		binary.BigEndian.PutUint16(buf[:], uint16(n)) //nolint:gosec // parsed from a 16-bit field on read.
		w.Write(buf[:])

		var zero [2]byte

		w.Write(zero[:]) // track/disc total, always zero on write

		if code == "trkn" {
			w.Write(zero[:]) // trkn carries one extra trailing u16 versus disk
		}

	case class == atl.DataClassReserved0 && code == "gnre":
		index, ok := genreIndexFromName(value)
		if !ok {
			index = 0
		}

		var buf [2]byte

		binary.BigEndian.PutUint16(buf[:], index)
		w.Write(buf[:])

	case class == atl.DataClassUTF8:
		w.WriteString(value)

	case class == atl.DataClassUint8:
		n, _ := strconv.ParseUint(value, 10, 8) //nolint:errcheck // malformed values encode as 0.
		w.WriteByte(byte(n))

	default:
		w.WriteString(value)
	}

	return nil
}

// writePictures emits the covr atom family: the first picture gets the
// outer "covr" wrapper, subsequent pictures reuse it and emit only inner
// "data" atoms (spec.md §4.4 step 5 of the write path).
func writePictures(w *bytes.Buffer, pictures []atl.Picture) error {
	if len(pictures) == 0 {
		return nil
	}

	start := w.Len()

	w.Write(make([]byte, 4)) // outer size placeholder
	w.WriteString("covr")

	for _, pic := range pictures {
		if err := writePictureData(w, pic); err != nil {
			return err
		}
	}

	patchSize(w, start, w.Len()-start)

	return nil
}

func writePictureData(w *bytes.Buffer, pic atl.Picture) error {
	dataStart := w.Len()

	w.Write(make([]byte, 4))
	w.WriteString("data")

	var class atl.DataClass
	if pic.Format == atl.PicturePNG {
		class = atl.DataClassPNG
	} else {
		class = atl.DataClassJPEG
	}

	var classBytes [4]byte

	binary.BigEndian.PutUint32(classBytes[:], uint32(class))
	w.Write(classBytes[:])
	w.Write(make([]byte, 4))
	w.Write(pic.Data)

	patchSize(w, dataStart, w.Len()-dataStart)

	return nil
}

// patchSize overwrites the 4-byte big-endian size placeholder at offset
// pos within w's already-written bytes with size.
func patchSize(w *bytes.Buffer, pos, size int) {
	b := w.Bytes()
	binary.BigEndian.PutUint32(b[pos:pos+4], uint32(size)) //nolint:gosec // tag atoms never approach 4GiB.
}

// RewriteFileSizeInHeader cascades a size delta through every enclosing
// atom recorded in ctx.UpperAtoms, seeking to each recorded offset and
// overwriting its 32-bit size field with (stored_size + delta) (spec.md
// §4.4's final write step).
func RewriteFileSizeInHeader(w io.WriteSeeker, ctx *atl.WriteContext, delta int64) error {
	for _, entry := range ctx.UpperAtoms {
		newSize := int64(entry.Size) + delta
		if newSize < 0 || newSize > 1<<32-1 {
			return fmt.Errorf("mp4: rewritten size %d at offset %d out of range", newSize, entry.Offset)
		}

		if _, err := w.Seek(entry.Offset, io.SeekStart); err != nil {
			return fmt.Errorf("mp4: seeking to %d: %w", entry.Offset, err)
		}

		var buf [4]byte

		binary.BigEndian.PutUint32(buf[:], uint32(newSize))

		if _, err := w.Write(buf[:]); err != nil {
			return fmt.Errorf("mp4: writing size at %d: %w", entry.Offset, err)
		}
	}

	return nil
}
