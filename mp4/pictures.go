package mp4

import "github.com/farcloser/atl"

// jpegMagic is the 3-byte prefix that distinguishes a JPEG payload from a
// PNG one inside a data_class 13/14 picture atom (spec.md §4.4, §8).
var jpegMagic = [3]byte{0xFF, 0xD8, 0xFF}

// sniffPictureFormat classifies a picture payload by its leading bytes,
// per spec.md's resolved rule: class 13 with a JPEG magic is JPEG, class
// 14 or anything else is PNG.
func sniffPictureFormat(declaredClass atl.DataClass, lead [3]byte) atl.PictureFormat {
	if declaredClass == atl.DataClassJPEG && lead == jpegMagic {
		return atl.PictureJPEG
	}

	return atl.PicturePNG
}

// pngSignature is the full 8-byte PNG file signature.
var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

// hasFullPNGSignature reports whether payload's first 8 bytes match the
// full PNG signature. The data_class byte alone is authoritative for
// classification (spec.md's table); this only feeds a diagnostic trace
// when a declared-PNG picture doesn't actually look like one.
func hasFullPNGSignature(payload []byte) bool {
	if len(payload) < len(pngSignature) {
		return false
	}

	return [8]byte(payload[:8]) == pngSignature
}
