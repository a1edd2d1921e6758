package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/engine"
)

func extractArtCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract-art",
		Usage:     "write every embedded picture to <dir>/cover-N.{jpg,png}",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "output directory",
			},
			verboseFlag,
		},
		Action: runExtractArt,
	}
}

func runExtractArt(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	path := cmd.Args().First()
	outDir := cmd.String("out")

	f, size, err := openWithSize(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var writeErr error

	sink := func(data []byte, _ atl.PictureSemanticType, format atl.PictureFormat, _ atl.TagKind, _ atl.DataClass, index int) {
		if writeErr != nil {
			return
		}

		ext := "png"
		if format == atl.PictureJPEG {
			ext = "jpg"
		}

		dest := filepath.Join(outDir, fmt.Sprintf("cover-%d.%s", index, ext))

		if err := os.WriteFile(dest, data, 0o644); err != nil { //nolint:gosec // cover art is not sensitive.
			writeErr = fmt.Errorf("writing %s: %w", dest, err)

			return
		}

		fmt.Println(dest)
	}

	_, _, _, err = engine.Read(f, size, atl.ReadParams{ReadTag: true, PictureSink: sink, Logger: loggerFromCommand(cmd)})
	if err != nil {
		return fmt.Errorf("atltag extract-art: %w", err)
	}

	return writeErr
}
