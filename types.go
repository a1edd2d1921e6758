// Package atl provides an AAC/MP4 metadata and stream-descriptor engine:
// ADIF/ADTS bitstream analysis and ISO-BMFF box-tree reading/writing of the
// moov/udta/meta/ilst tag region.
package atl

import "fmt"

// HeaderKind identifies the bitstream/container framing a file was
// recognized as.
type HeaderKind uint8

const (
	// HeaderUnknown means the leading bytes matched none of the recognized
	// framings.
	HeaderUnknown HeaderKind = iota
	// HeaderADIF is a raw AAC stream with a single file-start header.
	HeaderADIF
	// HeaderADTS is a raw AAC stream with a sync header on every frame.
	HeaderADTS
	// HeaderMP4 is an ISO-BMFF container (.mp4/.m4a).
	HeaderMP4
)

// String returns the human-readable name of the header kind.
func (k HeaderKind) String() string {
	switch k {
	case HeaderUnknown:
		return "unknown"
	case HeaderADIF:
		return "ADIF"
	case HeaderADTS:
		return "ADTS"
	case HeaderMP4:
		return "MP4"
	default:
		return fmt.Sprintf("HeaderKind(%d)", uint8(k))
	}
}

// MpegVersion distinguishes the two generations of the AAC bitstream.
type MpegVersion uint8

const (
	// MpegVersionUnknown means the version bit has not been read yet.
	MpegVersionUnknown MpegVersion = iota
	// MpegVersion2 is MPEG-2 AAC.
	MpegVersion2
	// MpegVersion4 is MPEG-4 AAC.
	MpegVersion4
)

func (v MpegVersion) String() string {
	switch v {
	case MpegVersion2:
		return "MPEG-2"
	case MpegVersion4:
		return "MPEG-4"
	default:
		return "unknown"
	}
}

// Profile is the AAC object type/profile.
type Profile uint8

const (
	// ProfileUnknown means the profile has not been read yet.
	ProfileUnknown Profile = iota
	// ProfileMain is the AAC Main profile.
	ProfileMain
	// ProfileLC is the AAC Low Complexity profile.
	ProfileLC
	// ProfileSSR is the AAC Scalable Sample Rate profile.
	ProfileSSR
	// ProfileLTP is the AAC Long Term Prediction profile.
	ProfileLTP
)

func (p Profile) String() string {
	switch p {
	case ProfileMain:
		return "Main"
	case ProfileLC:
		return "LC"
	case ProfileSSR:
		return "SSR"
	case ProfileLTP:
		return "LTP"
	default:
		return "unknown"
	}
}

// ProfileFromCode converts a 2-bit ADIF/ADTS profile code to a Profile,
// per the ADIF/ADTS "profile = code + 1" rule.
func ProfileFromCode(code uint8) Profile {
	switch code + 1 {
	case uint8(ProfileMain):
		return ProfileMain
	case uint8(ProfileLC):
		return ProfileLC
	case uint8(ProfileSSR):
		return ProfileSSR
	case uint8(ProfileLTP):
		return ProfileLTP
	default:
		return ProfileUnknown
	}
}

// BitRateKind classifies whether a stream's bit rate is constant or
// variable.
type BitRateKind uint8

const (
	// BitRateUnknown means the classification has not been determined yet.
	BitRateUnknown BitRateKind = iota
	// BitRateCBR is constant bit rate.
	BitRateCBR
	// BitRateVBR is variable bit rate.
	BitRateVBR
)

func (k BitRateKind) String() string {
	switch k {
	case BitRateCBR:
		return "CBR"
	case BitRateVBR:
		return "VBR"
	default:
		return "unknown"
	}
}

// sampleRateTable is the fixed 16-entry ADIF/ADTS sample-rate table, indexed
// by a 4-bit code. Indices 12-15 are reserved and map to 0.
var sampleRateTable = [16]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 0, 0, 0, 0,
}

// SampleRateFromIndex looks up the sample rate for a 4-bit table index.
// Out-of-range indices return 0, matching the reserved table entries.
func SampleRateFromIndex(index uint8) int {
	if int(index) >= len(sampleRateTable) {
		return 0
	}

	return sampleRateTable[index]
}

// TechnicalDescriptor is the structured technical summary produced by a
// successful read: codec profile, channel count, sample rate, bit rate,
// duration, and CBR/VBR classification.
type TechnicalDescriptor struct {
	HeaderKind   HeaderKind
	MpegVersion  MpegVersion
	Profile      Profile
	Channels     uint8
	SampleRateHz int
	BitRateKind  BitRateKind
	BitRateBps   float64
	DurationSec  float64
	// TotalFrames is populated for ADTS streams only.
	TotalFrames uint
}

// Valid reports whether the descriptor represents a successfully parsed,
// internally consistent stream.
func (d TechnicalDescriptor) Valid() bool {
	return d.HeaderKind != HeaderUnknown &&
		d.Channels > 0 &&
		d.SampleRateHz > 0 &&
		d.BitRateBps > 0
}
