package atl_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/farcloser/atl"
)

func TestProfileFromCode(t *testing.T) {
	cases := []struct {
		code uint8
		want atl.Profile
	}{
		{0, atl.ProfileMain},
		{1, atl.ProfileLC},
		{2, atl.ProfileSSR},
		{3, atl.ProfileLTP},
		{4, atl.ProfileUnknown},
	}

	for _, c := range cases {
		if got := atl.ProfileFromCode(c.code); got != c.want {
			t.Errorf("ProfileFromCode(%d) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestSampleRateFromIndex(t *testing.T) {
	cases := []struct {
		index uint8
		want  int
	}{
		{0, 96000},
		{4, 44100},
		{11, 8000},
		{12, 0},
		{15, 0},
		{255, 0},
	}

	for _, c := range cases {
		if got := atl.SampleRateFromIndex(c.index); got != c.want {
			t.Errorf("SampleRateFromIndex(%d) = %d, want %d", c.index, got, c.want)
		}
	}
}

func TestTechnicalDescriptorValid(t *testing.T) {
	valid := atl.TechnicalDescriptor{
		HeaderKind:   atl.HeaderADTS,
		Channels:     2,
		SampleRateHz: 44100,
		BitRateBps:   128000,
	}
	if !valid.Valid() {
		t.Fatalf("expected descriptor to be valid: %+v", valid)
	}

	wantShape := atl.TechnicalDescriptor{
		HeaderKind:   atl.HeaderADTS,
		Channels:     2,
		SampleRateHz: 44100,
		BitRateBps:   128000,
	}
	if diff := cmp.Diff(wantShape, valid); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}

	unknown := atl.TechnicalDescriptor{}
	if unknown.Valid() {
		t.Fatalf("zero-value descriptor must not be valid")
	}
}

func TestTagRecordSetGetClearRoundTrip(t *testing.T) {
	tag := atl.NewTagRecord()

	if tag.TagExists() {
		t.Fatalf("freshly constructed tag must report TagExists() == false")
	}

	tag.Set(atl.Title, "Round Trip")
	tag.Set(atl.TrackNumber, "3")

	if v, ok := tag.Get(atl.Title); !ok || v != "Round Trip" {
		t.Fatalf("Get(Title) = %q, %v, want %q, true", v, ok, "Round Trip")
	}

	if !tag.TagExists() {
		t.Fatalf("tag with a set field must report TagExists() == true")
	}

	tag.Clear(atl.Title)

	if v, ok := tag.Get(atl.Title); ok || v != "" {
		t.Fatalf("Get(Title) after Clear = %q, %v, want \"\", false", v, ok)
	}

	other := atl.NewTagRecord()
	other.Set(atl.TrackNumber, "3")

	diffOpts := cmp.AllowUnexported(atl.TagRecord{})
	if diff := cmp.Diff(other, tag, diffOpts, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("tag mismatch after clearing Title (-want +got):\n%s", diff)
	}
}
