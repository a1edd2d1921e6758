package aac_test

import (
	"bytes"
	"testing"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/aac"
	"github.com/farcloser/atl/internal/ioreader"
)

func TestRecognize(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want atl.HeaderKind
	}{
		{"ADIF", []byte("ADIF\x00\x00\x00\x00"), atl.HeaderADIF},
		{"ADTS", []byte{0xFF, 0xF1, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, atl.HeaderADTS},
		{"MP4", append([]byte{0, 0, 0, 0x18}, []byte("ftyp")...), atl.HeaderMP4},
		{"unrecognized", []byte("\x00\x00\x00\x00XXXX"), atl.HeaderUnknown},
		{"too short", []byte{0x01, 0x02}, atl.HeaderUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := ioreader.New(bytes.NewReader(tc.data))

			got, err := aac.Recognize(r, 0)
			if err != nil {
				t.Fatalf("Recognize: %v", err)
			}

			if got != tc.want {
				t.Errorf("Recognize() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRecognizeSkipsID3v2(t *testing.T) {
	data := append(make([]byte, 10), []byte("ADIF\x00\x00\x00\x00")...)

	r := ioreader.New(bytes.NewReader(data))

	got, err := aac.Recognize(r, 10)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}

	if got != atl.HeaderADIF {
		t.Errorf("Recognize() = %v, want %v", got, atl.HeaderADIF)
	}
}
