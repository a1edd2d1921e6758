package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/atl"
	"github.com/farcloser/atl/engine"
)

// setFieldFlags lists every semantic field settable from the command line,
// paired with its flag name.
var setFieldFlags = []struct {
	flag  string
	field atl.FieldID
}{
	{"title", atl.Title},
	{"artist", atl.Artist},
	{"album", atl.Album},
	{"album-artist", atl.AlbumArtist},
	{"genre", atl.Genre},
	{"year", atl.RecordingYear},
	{"track", atl.TrackNumber},
	{"disc", atl.DiscNumber},
	{"composer", atl.Composer},
	{"comment", atl.Comment},
	{"copyright", atl.Copyright},
}

func setCommand() *cli.Command {
	flags := make([]cli.Flag, 0, len(setFieldFlags)+1)
	for _, f := range setFieldFlags {
		flags = append(flags, &cli.StringFlag{Name: f.flag, Usage: "set the " + f.flag + " field"})
	}

	flags = append(flags, verboseFlag)

	return &cli.Command{
		Name:      "set",
		Usage:     "set tag fields and rewrite the file's ilst atom in place",
		ArgsUsage: "<file>",
		Flags:     flags,
		Action:    runSet,
	}
}

func runSet(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	path := cmd.Args().First()

	f, size, err := openWithSize(path)
	if err != nil {
		return err
	}

	_, tag, writeCtx, err := engine.Read(
		f, size,
		atl.ReadParams{ReadTag: true, PrepareForWriting: true, Logger: loggerFromCommand(cmd)},
	)
	f.Close()

	if err != nil {
		return fmt.Errorf("atltag set: %w", err)
	}

	if writeCtx == nil {
		return fmt.Errorf("atltag set: file is not a writable MP4 container")
	}

	for _, spec := range setFieldFlags {
		if !cmd.IsSet(spec.flag) {
			continue
		}

		tag.Set(spec.field, cmd.String(spec.flag))
	}

	var newIlst bytes.Buffer
	if err := engine.Write(tag, &newIlst); err != nil {
		return fmt.Errorf("atltag set: encoding tag: %w", err)
	}

	if err := spliceIlst(path, writeCtx, newIlst.Bytes()); err != nil {
		return fmt.Errorf("atltag set: %w", err)
	}

	return nil
}

// spliceIlst rewrites path in place, replacing the bytes at
// [ctx.IlstOffset, ctx.IlstOffset+ctx.IlstSize) with newIlst, then
// cascades the resulting size delta through every recorded upper atom.
func spliceIlst(path string, ctx *atl.WriteContext, newIlst []byte) error {
	original, err := os.ReadFile(path) //nolint:gosec // CLI tool operates on a user-specified path.
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	before := original[:ctx.IlstOffset]
	after := original[ctx.IlstOffset+int64(ctx.IlstSize):]

	spliced := make([]byte, 0, len(before)+len(newIlst)+len(after))
	spliced = append(spliced, before...)
	spliced = append(spliced, newIlst...)
	spliced = append(spliced, after...)

	tmp := path + ".atltag-tmp"
	if err := os.WriteFile(tmp, spliced, 0o644); err != nil { //nolint:gosec // matches the original file's accessibility.
		return fmt.Errorf("writing %s: %w", tmp, err)
	}

	delta := int64(len(newIlst)) - int64(ctx.IlstSize)

	if err := rewriteSizes(tmp, ctx, delta); err != nil {
		os.Remove(tmp)

		return err
	}

	return os.Rename(tmp, path)
}

func rewriteSizes(path string, ctx *atl.WriteContext, delta int64) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644) //nolint:gosec // matches the original file's accessibility.
	if err != nil {
		return fmt.Errorf("opening %s for size rewrite: %w", path, err)
	}
	defer f.Close()

	var seeker io.WriteSeeker = f

	return engine.RewriteFileSizeInHeader(seeker, ctx, delta)
}
