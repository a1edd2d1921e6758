package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/engine"
)

// jsonDescriptor mirrors TechnicalDescriptor's exported fields so --json
// output doesn't depend on atl.TechnicalDescriptor never growing unexported
// helper fields.
type jsonDescriptor struct {
	HeaderKind   string  `json:"header_kind"`
	MpegVersion  string  `json:"mpeg_version"`
	Profile      string  `json:"profile"`
	Channels     uint8   `json:"channels"`
	SampleRateHz int     `json:"sample_rate_hz"`
	BitRateKind  string  `json:"bit_rate_kind"`
	BitRateBps   float64 `json:"bit_rate_bps"`
	DurationSec  float64 `json:"duration_sec"`
	TotalFrames  uint    `json:"total_frames"`
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print the technical descriptor and tag fields of a file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the descriptor as JSON instead of text"},
			verboseFlag,
		},
		Action: runInfo,
	}
}

func runInfo(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("atltag info: missing <file> argument")
	}

	f, size, err := openWithSize(path)
	if err != nil {
		return err
	}
	defer f.Close()

	desc, tag, _, err := engine.Read(f, size, atl.ReadParams{ReadTag: true, Logger: loggerFromCommand(cmd)})
	if err != nil {
		return fmt.Errorf("atltag info: %w", err)
	}

	if cmd.Bool("json") {
		return printInfoJSON(desc)
	}

	printInfoText(desc, tag)

	return nil
}

func printInfoJSON(desc atl.TechnicalDescriptor) error {
	out := jsonDescriptor{
		HeaderKind:   desc.HeaderKind.String(),
		MpegVersion:  desc.MpegVersion.String(),
		Profile:      desc.Profile.String(),
		Channels:     desc.Channels,
		SampleRateHz: desc.SampleRateHz,
		BitRateKind:  desc.BitRateKind.String(),
		BitRateBps:   desc.BitRateBps,
		DurationSec:  desc.DurationSec,
		TotalFrames:  desc.TotalFrames,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func printInfoText(desc atl.TechnicalDescriptor, tag *atl.TagRecord) {
	fmt.Printf("header kind:   %s\n", desc.HeaderKind)
	fmt.Printf("mpeg version:  %s\n", desc.MpegVersion)
	fmt.Printf("profile:       %s\n", desc.Profile)
	fmt.Printf("channels:      %d\n", desc.Channels)
	fmt.Printf("sample rate:   %d Hz\n", desc.SampleRateHz)
	fmt.Printf("bit rate kind: %s\n", desc.BitRateKind)
	fmt.Printf("bit rate:      %.0f bps\n", desc.BitRateBps)
	fmt.Printf("duration:      %.2f s\n", desc.DurationSec)

	if desc.TotalFrames > 0 {
		fmt.Printf("total frames:  %d\n", desc.TotalFrames)
	}

	if tag == nil || !tag.TagExists() {
		fmt.Println("tag:           none")

		return
	}

	fmt.Println("tag:")

	for _, field := range []atl.FieldID{
		atl.Title, atl.Artist, atl.Album, atl.AlbumArtist, atl.Genre,
		atl.RecordingYear, atl.TrackNumber, atl.DiscNumber, atl.Composer,
		atl.Comment, atl.Copyright, atl.Rating, atl.GeneralDescription,
	} {
		if value, ok := tag.Get(field); ok {
			fmt.Printf("  %-18s %s\n", field.String()+":", value)
		}
	}

	for _, extra := range tag.AdditionalFields {
		fmt.Printf("  %-18s %s\n", extra.NativeCode+":", extra.Value)
	}

	if len(tag.Pictures) > 0 {
		fmt.Printf("  pictures:          %d\n", len(tag.Pictures))
	}
}
