package mp4

import (
	"fmt"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// dataAtomHeaderSize is the number of bytes from a "data" atom's start to
// its payload: the atom's own 8-byte box header plus 3 flag bytes, 1
// data_class byte and 4 NULL bytes (spec.md §4.4 phase 10: "data_size - 16").
const dataAtomHeaderSize = 16

// readTagFrames iterates every entry atom inside ilst's payload, decoding
// each into either a semantic field, a packed number, a genre, a picture,
// or an AdditionalField (spec.md §4.4 phase 10).
func readTagFrames(
	r *ioreader.Reader,
	ilst Box,
	fileSize int64,
	tag *atl.TagRecord,
	params atl.ReadParams,
) error {
	payloadEnd := ilst.PayloadEnd()
	pos := ilst.PayloadStart

	pictureIndex := 0

	for pos < payloadEnd {
		if err := r.Seek(pos); err != nil {
			return err
		}

		entrySize, err := r.ReadU32BE()
		if err != nil {
			return err
		}

		// The code is kept as its raw on-disk bytes (e.g. 0xA9 "nam"), the
		// same form fieldByNativeCode and the write path use.
		rawCode, err := r.ReadBytes(4)
		if err != nil {
			return err
		}

		entryCode := string(rawCode)

		entryPayloadStart := pos + boxHeaderSize

		dataBox, err := LookFor(r, "data", entryPayloadStart, pos+int64(entrySize), fileSize)
		if err != nil {
			return fmt.Errorf("mp4: locating data atom in %q entry: %w", entryCode, err)
		}

		if err := decodeDataAtom(r, dataBox, entryCode, tag, params, &pictureIndex); err != nil {
			return err
		}

		pos += int64(entrySize)
	}

	return nil
}

// decodeDataAtom reads one "data" atom's data_class byte and payload and
// stores the result into tag (or invokes params.PictureSink for picture
// classes).
func decodeDataAtom(
	r *ioreader.Reader,
	dataBox Box,
	entryCode string,
	tag *atl.TagRecord,
	params atl.ReadParams,
	pictureIndex *int,
) error {
	if err := r.Seek(dataBox.PayloadStart); err != nil {
		return err
	}

	if err := r.Skip(3); err != nil {
		return err
	}

	classByte, err := r.ReadU8()
	if err != nil {
		return err
	}

	if err := r.Skip(4); err != nil {
		return err
	}

	class := atl.DataClass(classByte)
	dataSize := dataBox.TotalSize // spec's "data_size" is the data atom's total size, header included.

	switch {
	case class == atl.DataClassUTF8:
		text, err := r.ReadBytes(int(dataSize - dataAtomHeaderSize))
		if err != nil {
			return err
		}

		storeField(tag, entryCode, string(text), params)

	case class == atl.DataClassUint8:
		b, err := r.ReadU8()
		if err != nil {
			return err
		}

		storeField(tag, entryCode, fmt.Sprintf("%d", b), params)

	case class == atl.DataClassJPEG || class == atl.DataClassPNG:
		lead, err := r.ReadBytes(3)
		if err != nil {
			return err
		}

		if err := r.Skip(-3); err != nil {
			return err
		}

		payload, err := r.ReadBytes(int(dataSize - dataAtomHeaderSize))
		if err != nil {
			return err
		}

		if params.PictureSink != nil {
			var leadArr [3]byte

			copy(leadArr[:], lead)

			format := sniffPictureFormat(class, leadArr)

			if format == atl.PicturePNG && !hasFullPNGSignature(payload) {
				params.EffectiveLogger().Debug().
					Str("entry", entryCode).
					Msg("picture declared as PNG but missing the full 8-byte PNG signature")
			}

			params.PictureSink(payload, atl.SemanticCoverFront, format, atl.TagKindMP4, class, *pictureIndex)
			tag.Pictures = append(tag.Pictures, atl.Picture{Data: payload, Format: format, Type: atl.SemanticCoverFront})
		}

		*pictureIndex++

	case class == atl.DataClassReserved0 && packedNumberCodes[entryCode]:
		if err := r.Skip(2); err != nil {
			return err
		}

		number, err := r.ReadU16BE()
		if err != nil {
			return err
		}

		if err := r.Skip(2); err != nil {
			return err
		}

		storeField(tag, entryCode, fmt.Sprintf("%d", number), params)

	case class == atl.DataClassReserved0 && entryCode == "gnre":
		index, err := r.ReadU16BE()
		if err != nil {
			return err
		}

		storeField(tag, entryCode, genreNameFromIndex(index), params)

	default:
		// Unhandled data_class: silent skip, forward-compatible.
	}

	return nil
}

// storeField writes a decoded value into its mapped semantic field, or
// into AdditionalFields if unmapped and requested. Duplicate native codes
// overwrite earlier occurrences, matching spec.md §4.4.
func storeField(tag *atl.TagRecord, nativeCode, value string, params atl.ReadParams) {
	if field, ok := fieldByNativeCode[nativeCode]; ok {
		tag.Set(field, value)

		return
	}

	if !params.ReadAllMetaFrames {
		return
	}

	for i := range tag.AdditionalFields {
		if tag.AdditionalFields[i].NativeCode == nativeCode {
			tag.AdditionalFields[i].Value = value

			return
		}
	}

	tag.AdditionalFields = append(tag.AdditionalFields, atl.AdditionalField{NativeCode: nativeCode, Value: value})
}
