package mp4

import (
	"bytes"
	"io"
	"testing"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/internal/ioreader"
)

func TestWriteRoundTrip(t *testing.T) {
	tag := atl.NewTagRecord()
	tag.Set(atl.Title, "Round Trip")
	tag.Set(atl.Genre, "Ska")
	tag.Set(atl.TrackNumber, "5")
	tag.Pictures = append(tag.Pictures, atl.Picture{
		Data:   append([]byte{0xFF, 0xD8, 0xFF}, []byte("jpegdata")...),
		Format: atl.PictureJPEG,
	})

	var buf bytes.Buffer
	if err := Write(tag, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := ioreader.New(bytes.NewReader(buf.Bytes()))

	ilst, err := ReadBoxHeader(r, int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadBoxHeader: %v", err)
	}

	if ilst.Type != "ilst" {
		t.Fatalf("Type = %q, want ilst", ilst.Type)
	}

	roundTripped := atl.NewTagRecord()

	var sunk [][]byte

	params := atl.ReadParams{
		PictureSink: func(data []byte, _ atl.PictureSemanticType, _ atl.PictureFormat, _ atl.TagKind, _ atl.DataClass, _ int) {
			sunk = append(sunk, data)
		},
	}

	if err := readTagFrames(r, ilst, int64(buf.Len()), roundTripped, params); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if got, ok := roundTripped.Get(atl.Title); !ok || got != "Round Trip" {
		t.Errorf("Title = %q, %v, want %q, true", got, ok, "Round Trip")
	}

	if got, ok := roundTripped.Get(atl.Genre); !ok || got != "Ska" {
		t.Errorf("Genre = %q, %v, want %q, true", got, ok, "Ska")
	}

	if got, ok := roundTripped.Get(atl.TrackNumber); !ok || got != "5" {
		t.Errorf("TrackNumber = %q, %v, want %q, true", got, ok, "5")
	}

	if len(sunk) != 1 {
		t.Fatalf("PictureSink invocations = %d, want 1", len(sunk))
	}
}

func TestWriteUnknownGenreEncodesZeroIndex(t *testing.T) {
	tag := atl.NewTagRecord()
	tag.Set(atl.Genre, "Not A Real Genre")

	var buf bytes.Buffer
	if err := Write(tag, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	r := ioreader.New(bytes.NewReader(buf.Bytes()))

	ilst, err := ReadBoxHeader(r, int64(buf.Len()))
	if err != nil {
		t.Fatalf("ReadBoxHeader: %v", err)
	}

	roundTripped := atl.NewTagRecord()
	if err := readTagFrames(r, ilst, int64(buf.Len()), roundTripped, atl.ReadParams{}); err != nil {
		t.Fatalf("readTagFrames: %v", err)
	}

	if got, ok := roundTripped.Get(atl.Genre); ok && got != "" {
		t.Errorf("Genre = %q, %v, want empty/unset for an out-of-table name", got, ok)
	}
}

// memWriteSeeker is a minimal in-memory io.WriteSeeker for exercising
// RewriteFileSizeInHeader without touching the filesystem.
type memWriteSeeker struct {
	buf []byte
	pos int64
}

func (m *memWriteSeeker) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}

	copy(m.buf[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}

	return m.pos, nil
}

func TestRewriteFileSizeInHeaderCascade(t *testing.T) {
	ctx := &atl.WriteContext{
		UpperAtoms: atl.UpperAtomTable{
			{Offset: 0, Size: 1000},
			{Offset: 100, Size: 500},
			{Offset: 200, Size: 300},
		},
	}

	w := &memWriteSeeker{buf: make([]byte, 204)}

	const delta = 42

	if err := RewriteFileSizeInHeader(w, ctx, delta); err != nil {
		t.Fatalf("RewriteFileSizeInHeader: %v", err)
	}

	for _, entry := range ctx.UpperAtoms {
		r := ioreader.New(bytes.NewReader(w.buf[entry.Offset:]))

		got, err := r.ReadU32BE()
		if err != nil {
			t.Fatalf("ReadU32BE at %d: %v", entry.Offset, err)
		}

		if want := entry.Size + delta; got != want {
			t.Errorf("size at offset %d = %d, want %d", entry.Offset, got, want)
		}
	}
}
