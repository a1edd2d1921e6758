package mp4

import (
	"testing"

	"github.com/farcloser/atl"
)

func TestGenreIndexRoundTrip(t *testing.T) {
	for i, name := range id3v1Genres {
		index, ok := genreIndexFromName(name)
		if !ok {
			t.Fatalf("genreIndexFromName(%q) not found", name)
		}

		if got := genreNameFromIndex(index); got != name {
			t.Errorf("genre %d: genreNameFromIndex(genreIndexFromName(%q))=%q, want %q", i, name, got, name)
		}
	}
}

func TestGenreNameFromIndexOutOfRange(t *testing.T) {
	if got := genreNameFromIndex(0); got != "" {
		t.Errorf("genreNameFromIndex(0) = %q, want empty", got)
	}

	if got := genreNameFromIndex(uint16(len(id3v1Genres) + 1)); got != "" {
		t.Errorf("genreNameFromIndex(out of range) = %q, want empty", got)
	}
}

func TestClassForNativeCode(t *testing.T) {
	cases := []struct {
		code string
		want atl.DataClass
	}{
		{"gnre", atl.DataClassReserved0},
		{"trkn", atl.DataClassReserved0},
		{"rtng", atl.DataClassUint8},
		{"\xa9nam", atl.DataClassUTF8},
		{"unknown-code", atl.DataClassUTF8},
	}

	for _, tc := range cases {
		if got := classForNativeCode(tc.code); got != tc.want {
			t.Errorf("classForNativeCode(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}
