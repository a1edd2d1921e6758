package aac

import (
	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// adifCopyrightIDShortSkip and adifCopyrightIDLongSkip are the number of
// bits to skip after the 1-bit "copyright id present" flag, depending on
// its value (spec.md §4.2 step 1).
const (
	adifCopyrightIDShortSkip = 3
	adifCopyrightIDLongSkip  = 75
	adifCBRSkip              = 51
	adifVBRSkip              = 31
	adifBitRateBits          = 23
	adifChannelFieldBits     = 4
	adifChannelFieldCount    = 4
	adifChannelTailBits      = 2
)

// DecodeADIF parses an ADIF header into desc, per spec.md §4.2. r must
// already have recognized "ADIF" at id3v2Size; bit position accounting
// starts right after that 4-byte tag (id3v2Size*8 + 32).
func DecodeADIF(r *ioreader.Reader, id3v2Size int64, desc *atl.TechnicalDescriptor) error {
	pos := id3v2Size*8 + 32

	copyrightIDPresent, err := r.ReadBits(pos, 1)
	if err != nil {
		return err
	}

	pos++

	if copyrightIDPresent != 0 {
		pos += adifCopyrightIDLongSkip
	} else {
		pos += adifCopyrightIDShortSkip
	}

	vbrBit, err := r.ReadBits(pos, 1)
	if err != nil {
		return err
	}

	pos++

	isVBR := vbrBit != 0
	if isVBR {
		desc.BitRateKind = atl.BitRateVBR
	} else {
		desc.BitRateKind = atl.BitRateCBR
	}

	bitRate, err := r.ReadBits(pos, adifBitRateBits)
	if err != nil {
		return err
	}

	pos += adifBitRateBits
	desc.BitRateBps = float64(bitRate)

	if isVBR {
		pos += adifVBRSkip
	} else {
		pos += adifCBRSkip
	}

	desc.MpegVersion = atl.MpegVersion4

	profileCode, err := r.ReadBits(pos, 2)
	if err != nil {
		return err
	}

	pos += 2
	desc.Profile = atl.ProfileFromCode(uint8(profileCode))

	sampleRateIdx, err := r.ReadBits(pos, 4)
	if err != nil {
		return err
	}

	pos += 4
	desc.SampleRateHz = atl.SampleRateFromIndex(uint8(sampleRateIdx))

	// Four 4-bit channel counts followed by a final 2-bit field, summed
	// additively into the channel total. This matches the source engine's
	// accumulation exactly and must not be "simplified" to a lookup —
	// real ADIF files rely on the sum, not any single field.
	var channels uint32

	for range adifChannelFieldCount {
		count, err := r.ReadBits(pos, adifChannelFieldBits)
		if err != nil {
			return err
		}

		pos += adifChannelFieldBits
		channels += count
	}

	tail, err := r.ReadBits(pos, adifChannelTailBits)
	if err != nil {
		return err
	}

	pos += adifChannelTailBits
	channels += tail

	desc.Channels = uint8(channels) //nolint:gosec // ADIF channel sum fits uint8 for any real stream.
	desc.HeaderKind = atl.HeaderADIF

	return nil
}
