package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/engine"
	"github.com/farcloser/atl/mp4"
)

// box32 builds an ISO-BMFF box with a plain 4-byte size field: the 4cc code
// followed by payload, prefixed with the total on-disk length.
func box32(code string, payload []byte) []byte {
	out := make([]byte, 0, 8+len(payload))

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(8+len(payload))) //nolint:gosec // test fixture, small sizes only.

	out = append(out, size[:]...)
	out = append(out, []byte(code)...)
	out = append(out, payload...)

	return out
}

// buildFixtureFile assembles a synthetic MP4 whose ilst atom is produced by
// mp4.Write itself, so that splicing back an unmodified TagRecord reproduces
// the exact same bytes, and writes it to a temp file. It returns the file
// path and the absolute offset moov starts at, the start of the
// [moov, end_of_ilst) range that must survive an unmodified-tag round trip
// untouched.
func buildFixtureFile(t *testing.T, tag *atl.TagRecord) (path string, moovOffset int64) {
	t.Helper()

	ftyp := box32("ftyp", []byte("isomisom"))

	mvhdPayload := make([]byte, 0, 20)
	mvhdPayload = append(mvhdPayload, 0)
	mvhdPayload = append(mvhdPayload, make([]byte, 11)...)

	var timeScale, duration [4]byte

	binary.BigEndian.PutUint32(timeScale[:], 1000)
	binary.BigEndian.PutUint32(duration[:], 180000)
	mvhdPayload = append(mvhdPayload, timeScale[:]...)
	mvhdPayload = append(mvhdPayload, duration[:]...)
	mvhd := box32("mvhd", mvhdPayload)

	stsdDesc := make([]byte, 0, 34)
	stsdDesc = append(stsdDesc, 0, 0, 0, 34)
	stsdDesc = append(stsdDesc, []byte("mp4a")...)
	stsdDesc = append(stsdDesc, make([]byte, 4+10)...)

	var channels [2]byte

	binary.BigEndian.PutUint16(channels[:], 2)
	stsdDesc = append(stsdDesc, channels[:]...)
	stsdDesc = append(stsdDesc, make([]byte, 2+4)...)
	stsdDesc = append(stsdDesc, 0, 0, 0xAC, 0x44)

	stsdPayload := make([]byte, 0, 8+len(stsdDesc))
	stsdPayload = append(stsdPayload, 0, 0, 0, 0)
	stsdPayload = append(stsdPayload, 0, 0, 0, 1)
	stsdPayload = append(stsdPayload, stsdDesc...)
	stsd := box32("stsd", stsdPayload)

	stsz := box32("stsz", []byte{0, 0, 0, 0, 0, 0, 1, 0x91}) // common_sample_size=401

	stbl := box32("stbl", append(append([]byte{}, stsd...), stsz...))
	minf := box32("minf", stbl)
	mdia := box32("mdia", minf)
	trak := box32("trak", mdia)

	hdlrPayload := make([]byte, 0, 12)
	hdlrPayload = append(hdlrPayload, 0, 0, 0, 0)
	hdlrPayload = append(hdlrPayload, 0, 0, 0, 0)
	hdlrPayload = append(hdlrPayload, []byte("mdir")...)
	hdlr := box32("hdlr", hdlrPayload)

	var ilstBody bytes.Buffer
	if err := mp4.Write(tag, &ilstBody); err != nil {
		t.Fatalf("mp4.Write: %v", err)
	}

	metaPayload := make([]byte, 0, 4+len(hdlr)+ilstBody.Len())
	metaPayload = append(metaPayload, 0, 0, 0, 0)
	metaPayload = append(metaPayload, hdlr...)
	metaPayload = append(metaPayload, ilstBody.Bytes()...)
	meta := box32("meta", metaPayload)
	udta := box32("udta", meta)

	var moovPayload []byte
	moovPayload = append(moovPayload, mvhd...)
	moovPayload = append(moovPayload, trak...)
	moovPayload = append(moovPayload, udta...)
	moov := box32("moov", moovPayload)

	mdat := box32("mdat", bytes.Repeat([]byte{0xAB}, 2250))

	var out []byte
	out = append(out, ftyp...)
	moovOffset = int64(len(out))
	out = append(out, moov...)
	out = append(out, mdat...)

	dir := t.TempDir()
	path = filepath.Join(dir, "fixture.m4a")

	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	return path, moovOffset
}

// TestSpliceIlstRoundTripIsByteForByte exercises the only place that
// actually splices a new ilst into an original file on disk and cascades
// the header: splicing back a TagRecord read unmodified from the fixture
// must leave the file identical across [moov, end_of_ilst), matching the
// invariant exercised at the mp4 package level for in-memory buffers.
func TestSpliceIlstRoundTripIsByteForByte(t *testing.T) {
	tag := atl.NewTagRecord()
	tag.Set(atl.Title, "Round Trip")
	tag.Set(atl.Artist, "Tester")
	tag.Set(atl.TrackNumber, "3")
	tag.Set(atl.Genre, "Ska")

	path, moovOffset := buildFixtureFile(t, tag)

	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}

	f, size, err := openWithSize(path)
	if err != nil {
		t.Fatalf("openWithSize: %v", err)
	}

	_, readTag, writeCtx, err := engine.Read(f, size, atl.ReadParams{ReadTag: true, PrepareForWriting: true})
	f.Close()

	if err != nil {
		t.Fatalf("engine.Read: %v", err)
	}

	if writeCtx == nil {
		t.Fatal("WriteContext = nil, want non-nil")
	}

	endOfIlst := writeCtx.IlstOffset + int64(writeCtx.IlstSize)

	var newIlst bytes.Buffer
	if err := engine.Write(readTag, &newIlst); err != nil {
		t.Fatalf("engine.Write: %v", err)
	}

	if int64(newIlst.Len()) != int64(writeCtx.IlstSize) {
		t.Fatalf("newIlst size = %d, want %d: writing back an unmodified TagRecord must not change length",
			newIlst.Len(), writeCtx.IlstSize)
	}

	if err := spliceIlst(path, writeCtx, newIlst.Bytes()); err != nil {
		t.Fatalf("spliceIlst: %v", err)
	}

	result, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading spliced file: %v", err)
	}

	if len(result) != len(original) {
		t.Fatalf("len(result) = %d, want %d (unmodified tag must not change file length)", len(result), len(original))
	}

	for i := moovOffset; i < endOfIlst; i++ {
		if original[i] != result[i] {
			t.Fatalf("first mismatch at offset %d: %#x != %#x", i, original[i], result[i])
		}
	}
}
