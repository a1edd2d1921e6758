package mp4

import (
	"fmt"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

// audioSampleEntryCodes are the stsd format codes this engine recognizes as
// carrying channel/sample-rate fields (spec.md §4.4 phase 5).
var audioSampleEntryCodes = map[string]bool{
	"mp4a": true,
	"enca": true,
	"samr": true,
	"sawb": true,
}

// mvhdVersion1Skip and mvhdVersion0Skip are the reserved-byte
// skips before time_scale, depending on mvhd's version byte.
const (
	mvhdVersion1Skip = 3 + 16
	mvhdVersion0Skip = 3 + 8
)

// hdlrMetadataType is the only metadata handler type this engine accepts;
// anything else is a fatal, named rejection (spec.md §4.4 phase 8).
const hdlrMetadataType = "mdir"

// Read drives the box walker through the physical-descriptor and metadata
// phases (spec.md §4.4) and returns a populated TechnicalDescriptor and, if
// params.ReadTag is set, a TagRecord. If params.PrepareForWriting is set, a
// WriteContext suitable for a later Write + RewriteFileSizeInHeader pass is
// also returned.
func Read(
	r *ioreader.Reader,
	size atl.SizeInfo,
	params atl.ReadParams,
) (atl.TechnicalDescriptor, *atl.TagRecord, *atl.WriteContext, error) {
	desc := atl.TechnicalDescriptor{HeaderKind: atl.HeaderMP4}
	log := params.EffectiveLogger()

	if err := r.Seek(size.ID3v2Size); err != nil {
		return desc, nil, nil, err
	}

	// Phase 1: ftyp skip.
	ftyp, err := ReadBoxHeader(r, size.FileSize)
	if err != nil {
		return desc, nil, nil, fmt.Errorf("mp4: reading ftyp: %w", err)
	}

	if ftyp.Type != "ftyp" {
		return desc, nil, nil, ErrNotMP4
	}

	log.Debug().Int64("offset", ftyp.HeaderOffset).Int64("size", ftyp.TotalSize).Msg("found ftyp")

	if err := r.Seek(ftyp.PayloadEnd()); err != nil {
		return desc, nil, nil, err
	}

	// Phase 2: moov entry.
	moov, err := LookFor(r, "moov", ftyp.PayloadEnd(), size.FileSize, size.FileSize)
	if err != nil {
		return desc, nil, nil, fmt.Errorf("mp4: locating moov: %w", err)
	}

	log.Debug().Int64("offset", moov.HeaderOffset).Int64("size", moov.TotalSize).Msg("found moov")

	moovEnd := moov.PayloadEnd()

	// Phase 3: mvhd.
	if err := readMvhd(r, moov.PayloadStart, moovEnd, size.FileSize, &desc); err != nil {
		return desc, nil, nil, err
	}

	// Phase 4: trak -> mdia -> minf -> stbl.
	stbl, err := descendToStbl(r, moov.PayloadStart, moovEnd, size.FileSize)
	if err != nil {
		return desc, nil, nil, err
	}

	stblStart := stbl.PayloadStart
	stblEnd := stbl.PayloadEnd()

	// Phase 5: stsd.
	if err := readStsd(r, stblStart, stblEnd, size.FileSize, &desc); err != nil {
		return desc, nil, nil, err
	}

	// Phase 6: stsz (VBR detection).
	if err := readStsz(r, stblStart, stblEnd, size.FileSize, &desc); err != nil {
		return desc, nil, nil, err
	}

	var writeCtx *atl.WriteContext
	if params.PrepareForWriting {
		writeCtx = &atl.WriteContext{}
	}

	var tag *atl.TagRecord
	if params.ReadTag {
		tag = atl.NewTagRecord()

		ilstBox, hasIlst, metaEnd, err := readMetaAndIlst(r, moov, moovEnd, size.FileSize, writeCtx)
		if err != nil {
			return desc, nil, nil, err
		}

		if hasIlst {
			log.Debug().Int64("offset", ilstBox.HeaderOffset).Int64("size", ilstBox.TotalSize).Msg("found ilst")

			if err := readTagFrames(r, ilstBox, size.FileSize, tag, params); err != nil {
				return desc, nil, nil, err
			}

			if writeCtx != nil {
				writeCtx.IlstOffset = ilstBox.HeaderOffset
				writeCtx.IlstSize = uint32(ilstBox.TotalSize) //nolint:gosec // box sizes fit uint32 in practice.
			}
		} else if writeCtx != nil {
			// No existing ilst: a Write splices the new tag in as the
			// last child of meta, growing meta's payload from scratch.
			writeCtx.IlstOffset = metaEnd
			writeCtx.IlstSize = 0
		}
	}

	// Phase 11: mdat.
	mdat, err := LookFor(r, "mdat", size.ID3v2Size, size.FileSize, size.FileSize)
	if err != nil {
		return desc, nil, nil, fmt.Errorf("mp4: locating mdat: %w", err)
	}

	log.Debug().Int64("offset", mdat.HeaderOffset).Int64("size", mdat.TotalSize).Msg("found mdat")

	if desc.DurationSec > 0 {
		desc.BitRateBps = float64(mdat.PayloadSize()*8) / desc.DurationSec
	}

	return desc, tag, writeCtx, nil
}

func readMvhd(r *ioreader.Reader, rangeStart, rangeEnd, fileSize int64, desc *atl.TechnicalDescriptor) error {
	if _, err := LookFor(r, "mvhd", rangeStart, rangeEnd, fileSize); err != nil {
		return fmt.Errorf("mp4: locating mvhd: %w", err)
	}

	version, err := r.ReadU8()
	if err != nil {
		return err
	}

	if version == 1 {
		if err := r.Skip(mvhdVersion1Skip); err != nil {
			return err
		}
	} else {
		if err := r.Skip(mvhdVersion0Skip); err != nil {
			return err
		}
	}

	timeScale, err := r.ReadI32BE()
	if err != nil {
		return err
	}

	var durationUnits uint64
	if version == 1 {
		durationUnits, err = r.ReadU64BE()
	} else {
		var u32 uint32

		u32, err = r.ReadU32BE()
		durationUnits = uint64(u32)
	}

	if err != nil {
		return err
	}

	if timeScale != 0 {
		desc.DurationSec = float64(durationUnits) / float64(timeScale)
	}

	return nil
}

// descendToStbl performs the sequential trak -> mdia -> minf -> stbl
// descent. Only the first trak is supported (spec.md's resolved Open
// Question); AllTraks offers an opt-in enumeration of every trak for
// callers that need more.
func descendToStbl(r *ioreader.Reader, rangeStart, rangeEnd, fileSize int64) (Box, error) {
	trak, err := LookFor(r, "trak", rangeStart, rangeEnd, fileSize)
	if err != nil {
		return Box{}, fmt.Errorf("mp4: locating trak: %w", ErrNoTrak)
	}

	mdia, err := LookFor(r, "mdia", trak.PayloadStart, trak.PayloadEnd(), fileSize)
	if err != nil {
		return Box{}, fmt.Errorf("mp4: locating mdia: %w", err)
	}

	minf, err := LookFor(r, "minf", mdia.PayloadStart, mdia.PayloadEnd(), fileSize)
	if err != nil {
		return Box{}, fmt.Errorf("mp4: locating minf: %w", err)
	}

	stbl, err := LookFor(r, "stbl", minf.PayloadStart, minf.PayloadEnd(), fileSize)
	if err != nil {
		return Box{}, fmt.Errorf("mp4: locating stbl: %w", err)
	}

	return stbl, nil
}

// AllTraks enumerates every trak box directly under moov, in file order.
// The standard Read path only consults the first; this is an opt-in
// supplement for callers that need multi-track awareness (spec.md's
// resolved Open Question on multiple trak support).
func AllTraks(r *ioreader.Reader, moovPayloadStart, moovPayloadEnd, fileSize int64) ([]Box, error) {
	siblings, err := AllSiblings(r, moovPayloadStart, moovPayloadEnd, fileSize)
	if err != nil {
		return nil, err
	}

	var traks []Box

	for _, box := range siblings {
		if box.Type == "trak" {
			traks = append(traks, box)
		}
	}

	return traks, nil
}

func readStsd(r *ioreader.Reader, rangeStart, rangeEnd, fileSize int64, desc *atl.TechnicalDescriptor) error {
	if _, err := LookFor(r, "stsd", rangeStart, rangeEnd, fileSize); err != nil {
		return fmt.Errorf("mp4: locating stsd: %w", err)
	}

	if err := r.Skip(4); err != nil {
		return err
	}

	count, err := r.ReadU32BE()
	if err != nil {
		return err
	}

	for i := uint32(0); i < count; i++ {
		descLen, err := r.ReadU32BE()
		if err != nil {
			return err
		}

		code, err := r.ReadLatin1(4)
		if err != nil {
			return err
		}

		if audioSampleEntryCodes[code] {
			if err := r.Skip(4 + 10); err != nil {
				return err
			}

			channels, err := r.ReadU16BE()
			if err != nil {
				return err
			}

			if err := r.Skip(2 + 4); err != nil {
				return err
			}

			sampleRate, err := r.ReadI32BE()
			if err != nil {
				return err
			}

			desc.Channels = uint8(channels) //nolint:gosec // real stsd channel counts are tiny.
			desc.SampleRateHz = int(sampleRate)
		} else {
			if err := r.Skip(int64(descLen) - 4); err != nil {
				return err
			}
		}
	}

	return nil
}

func readStsz(r *ioreader.Reader, rangeStart, rangeEnd, fileSize int64, desc *atl.TechnicalDescriptor) error {
	if _, err := LookFor(r, "stsz", rangeStart, rangeEnd, fileSize); err != nil {
		return fmt.Errorf("mp4: locating stsz: %w", err)
	}

	if err := r.Skip(4); err != nil {
		return err
	}

	commonSampleSize, err := r.ReadI32BE()
	if err != nil {
		return err
	}

	if commonSampleSize != 0 {
		desc.BitRateKind = atl.BitRateCBR

		return nil
	}

	count, err := r.ReadU32BE()
	if err != nil {
		return err
	}

	var minSize, maxSize uint32

	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU32BE()
		if err != nil {
			return err
		}

		if i == 0 || v < minSize {
			minSize = v
		}

		if v > maxSize {
			maxSize = v
		}
	}

	const vbrThreshold = 1.01

	if float64(minSize)*vbrThreshold < float64(maxSize) {
		desc.BitRateKind = atl.BitRateVBR
	} else {
		desc.BitRateKind = atl.BitRateCBR
	}

	return nil
}

// readMetaAndIlst performs phases 7-9: udta -> meta, hdlr validation, and
// locating ilst. It returns the ilst Box and whether one was found.
func readMetaAndIlst(
	r *ioreader.Reader,
	moov Box,
	moovEnd, fileSize int64,
	writeCtx *atl.WriteContext,
) (Box, bool, int64, error) {
	udta, err := LookFor(r, "udta", moov.PayloadStart, moovEnd, fileSize)
	if err != nil {
		return Box{}, false, 0, fmt.Errorf("mp4: locating udta: %w", err)
	}

	meta, err := LookFor(r, "meta", udta.PayloadStart, udta.PayloadEnd(), fileSize)
	if err != nil {
		return Box{}, false, 0, fmt.Errorf("mp4: locating meta: %w", err)
	}

	if writeCtx != nil {
		if moov.SizeFieldWidth != 4 || udta.SizeFieldWidth != 4 || meta.SizeFieldWidth != 4 {
			return Box{}, false, 0, fmt.Errorf("mp4: preparing for writing: %w", ErrUnsupportedWriteSize)
		}

		writeCtx.UpperAtoms = append(writeCtx.UpperAtoms,
			atl.UpperAtomEntry{Offset: moov.HeaderOffset, Size: uint32(moov.TotalSize)}, //nolint:gosec
			atl.UpperAtomEntry{Offset: udta.HeaderOffset, Size: uint32(udta.TotalSize)}, //nolint:gosec
			atl.UpperAtomEntry{Offset: meta.HeaderOffset, Size: uint32(meta.TotalSize)}, //nolint:gosec
		)
	}

	if err := r.Skip(4); err != nil {
		return Box{}, false, 0, err
	}

	metaStart, err := r.Tell()
	if err != nil {
		return Box{}, false, 0, err
	}

	metaEnd := meta.PayloadEnd()

	if err := validateHdlr(r, metaStart, metaEnd, fileSize); err != nil {
		return Box{}, false, 0, err
	}

	ilst, err := LookFor(r, "ilst", metaStart, metaEnd, fileSize)
	if err != nil {
		return Box{}, false, metaEnd, nil //nolint:nilerr // no ilst simply means no tag exists yet (spec.md §7).
	}

	if writeCtx != nil {
		if ilst.SizeFieldWidth != 4 {
			return Box{}, false, 0, fmt.Errorf("mp4: preparing for writing: %w", ErrUnsupportedWriteSize)
		}

		writeCtx.UpperAtoms = append(writeCtx.UpperAtoms,
			atl.UpperAtomEntry{Offset: ilst.HeaderOffset, Size: uint32(ilst.TotalSize)}, //nolint:gosec
		)
	}

	return ilst, true, metaEnd, nil
}

func validateHdlr(r *ioreader.Reader, rangeStart, rangeEnd, fileSize int64) error {
	hdlr, err := LookFor(r, "hdlr", rangeStart, rangeEnd, fileSize)
	if err != nil {
		return fmt.Errorf("mp4: locating hdlr: %w", err)
	}

	if err := r.Skip(4 + 4); err != nil {
		return err
	}

	handlerType, err := r.ReadLatin1(4)
	if err != nil {
		return err
	}

	switch handlerType {
	case hdlrMetadataType:
		// ok
	case "mp7t":
		return atl.ErrMPEG7XMLMetadata
	case "mp7b":
		return atl.ErrMPEG7BinaryMetadata
	default:
		return atl.ErrUnrecognizedMetadataFormat
	}

	return r.Seek(hdlr.HeaderOffset + hdlr.TotalSize)
}
