package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/atl"
)

// errInvalidArgCount mirrors the teacher's own argument-count sentinel.
var errInvalidArgCount = errors.New("expected exactly one argument: file path")

// verboseFlag is shared by every subcommand that drives a Read, so
// --verbose means the same thing everywhere.
var verboseFlag = &cli.BoolFlag{Name: "verbose", Usage: "log MP4 box-walk and picture diagnostics to stderr"}

// loggerFromCommand builds a trace logger from the --verbose flag, or nil
// (tracing disabled) when it wasn't passed.
func loggerFromCommand(cmd *cli.Command) *zerolog.Logger {
	if !cmd.Bool("verbose") {
		return nil
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	return &logger
}

// openWithSize opens path and reports its SizeInfo. ID3v2 parsing is out
// of this engine's scope, so ID3v2Size is always reported as 0 — callers
// operating on files with a leading ID3v2 region must precompute that
// length themselves and are not served by this CLI.
func openWithSize(path string) (*os.File, atl.SizeInfo, error) {
	f, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files.
	if err != nil {
		return nil, atl.SizeInfo{}, fmt.Errorf("opening %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()

		return nil, atl.SizeInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}

	return f, atl.SizeInfo{FileSize: info.Size()}, nil
}
