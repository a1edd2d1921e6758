package aac

import (
	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// ADTS per-frame bit layout, exactly as spec.md §4.2 lays it out. This
// omits several fields a canonical ADTS fixed header carries (layer,
// protection-absence, private bit, original/copy, copy-ID) — the source
// engine's frame walk only ever consults the fields below, so that's all
// this mirrors.
const (
	adtsSyncBits           = 12
	adtsPreVersionSkipBits = 4
	adtsMpegVersionBits    = 1
	adtsPreProfileSkipBits = 4
	adtsProfileBits        = 2
	adtsSampleRateBits     = 4
	adtsPostRateSkipBits   = 5
	adtsChannelBits        = 3
	adtsMpeg4TailSkipBits  = 9
	adtsMpeg2TailSkipBits  = 7
	adtsFrameLengthBits    = 13
	adtsVBRMarkerBits      = 11

	// adtsMinFrameLength guards against a zero or implausibly short
	// frame length spinning the walk in place; the shortest layout above
	// spans 68 bits (MPEG-4) or 66 (MPEG-2), i.e. 9 bytes rounded up.
	adtsMinFrameLength = 9

	// adtsVBRMarker is the all-ones 11-bit value signaling a VBR frame.
	adtsVBRMarker = 0x7FF
)

// DecodeADTS walks every ADTS frame from id3v2Size to end of file, filling
// desc with the first frame's stream parameters, the total frame count,
// and a mean bit rate derived from total bytes consumed (spec.md §4.2).
// The file is classified VBR if any frame carries the VBR marker,
// otherwise CBR.
func DecodeADTS(r *ioreader.Reader, id3v2Size int64, desc *atl.TechnicalDescriptor) error {
	var (
		frameCount uint
		totalSize  int64
		anyVBR     bool
	)

	for {
		pos := (id3v2Size + totalSize) * 8

		sync, err := r.ReadBits(pos, adtsSyncBits)
		if err != nil {
			break
		}

		if sync != 0xFFF {
			break
		}

		field := pos + adtsSyncBits + adtsPreVersionSkipBits

		mpegVersionBit, err := r.ReadBits(field, adtsMpegVersionBits)
		if err != nil {
			return err
		}

		field += adtsMpegVersionBits + adtsPreProfileSkipBits

		profileCode, err := r.ReadBits(field, adtsProfileBits)
		if err != nil {
			return err
		}

		field += adtsProfileBits

		sampleRateIdx, err := r.ReadBits(field, adtsSampleRateBits)
		if err != nil {
			return err
		}

		field += adtsSampleRateBits + adtsPostRateSkipBits

		channels, err := r.ReadBits(field, adtsChannelBits)
		if err != nil {
			return err
		}

		field += adtsChannelBits

		if mpegVersionBit == 0 {
			field += adtsMpeg4TailSkipBits
		} else {
			field += adtsMpeg2TailSkipBits
		}

		frameLength, err := r.ReadBits(field, adtsFrameLengthBits)
		if err != nil {
			return err
		}

		field += adtsFrameLengthBits

		vbrMarker, err := r.ReadBits(field, adtsVBRMarkerBits)
		if err != nil {
			return err
		}

		if vbrMarker == adtsVBRMarker {
			anyVBR = true
		}

		if frameCount == 0 {
			if mpegVersionBit == 0 {
				desc.MpegVersion = atl.MpegVersion4
			} else {
				desc.MpegVersion = atl.MpegVersion2
			}

			desc.Profile = atl.ProfileFromCode(uint8(profileCode))
			desc.SampleRateHz = atl.SampleRateFromIndex(uint8(sampleRateIdx))
			desc.Channels = uint8(channels) //nolint:gosec // 3-bit field, always < 8.
		}

		if frameLength < adtsMinFrameLength {
			break
		}

		totalSize += int64(frameLength)
		frameCount++
	}

	if frameCount == 0 {
		return ErrNoADTSFrames
	}

	desc.HeaderKind = atl.HeaderADTS
	desc.TotalFrames = frameCount

	const samplesPerFrame = 1024

	if desc.SampleRateHz > 0 {
		desc.BitRateBps = 8 * float64(totalSize) / samplesPerFrame / float64(frameCount) * float64(desc.SampleRateHz)
	}

	if anyVBR {
		desc.BitRateKind = atl.BitRateVBR
	} else {
		desc.BitRateKind = atl.BitRateCBR
	}

	return nil
}
