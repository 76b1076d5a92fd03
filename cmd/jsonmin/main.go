// Command jsonmin is the CLI driver for package jsonmin: a thin
// external collaborator (spec §1, "Deliberately OUT OF SCOPE") around
// file/stdin/stdout I/O and flag parsing. It owns no minification
// logic itself.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"go.jacobcolvin.com/jsonmin"
	"go.jacobcolvin.com/jsonmin/config"
	"go.jacobcolvin.com/jsonmin/dispatch"
	"go.jacobcolvin.com/jsonmin/internal/xlog"
	"go.jacobcolvin.com/jsonmin/jerr"
)

var (
	mode    = pflag.StringP("mode", "m", "eco", "execution strategy: eco, sport, or turbo")
	lenient = pflag.BoolP("lenient", "l", false, "skip strict validation in sport/turbo (accepts trailing commas)")
	workers = pflag.IntP("workers", "w", 0, "turbo worker count (0 = auto-detect)")
	depth   = pflag.IntP("depth", "d", 0, "context-stack depth limit (0 = mode default)")
	timeout = pflag.DurationP("timeout", "t", 0, "turbo completion deadline (0 = mode default)")
	verbose = pflag.BoolP("verbose", "v", false, "enable development-mode diagnostic logging")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: jsonmin [--mode eco|sport|turbo] [INPUT] [OUTPUT]\n")
	pflag.PrintDefaults()
}

func main() {
	pflag.Usage = usage
	pflag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(logger, pflag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, formatDiagnostic(err))
		os.Exit(1)
	}
}

// formatDiagnostic renders err the way a user expects to see it on
// stderr: position-qualified when the failure carries a line/column
// (detected by the state machine), bare kind otherwise.
func formatDiagnostic(err error) string {
	var me *jerr.MinifyError
	if errors.As(err, &me) {
		if me.HasPosition {
			return fmt.Sprintf("error: %s at line %d column %d", me.Kind, me.Line, me.Column)
		}
		return fmt.Sprintf("error: %s", me.Kind)
	}
	return fmt.Sprintf("error: %s", err)
}

func newLogger(verbose bool) *zap.Logger {
	if verbose {
		return xlog.Development()
	}
	return xlog.Production()
}

func run(logger *zap.Logger, args []string) error {
	dmode, err := parseMode(*mode)
	if err != nil {
		return err
	}

	in, out, err := openIO(args)
	if err != nil {
		return err
	}
	defer in.Close()
	defer out.Close()

	src, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	// Only forward flags the user actually set; zero values fall
	// through to config.New's Default/FromEnv precedence instead of
	// clobbering a JSONMIN_WORKERS environment override with a flag
	// default that was never explicitly requested.
	opts := []config.Option{config.WithMode(dmode), config.WithLenient(*lenient)}
	if *workers > 0 {
		opts = append(opts, config.WithWorkers(*workers))
	}
	if *depth > 0 {
		opts = append(opts, config.WithMaxDepth(*depth))
	}
	if *timeout > 0 {
		opts = append(opts, config.WithDeadline(*timeout))
	}
	cfg := config.New(opts...)

	logger.Debug("minifying",
		zap.String("mode", dmode.String()),
		zap.Int("input_bytes", len(src)),
		zap.Int("workers", cfg.Workers),
		zap.Bool("lenient", cfg.Lenient),
	)

	result, err := jsonmin.MinifyWithConfig(src, cfg)
	if err != nil {
		return err
	}
	if _, err := out.Write(result); err != nil {
		return err
	}

	logger.Debug("done",
		zap.String("mode", dmode.String()),
		zap.Int("output_bytes", len(result)),
	)
	return nil
}

func parseMode(s string) (dispatch.Mode, error) {
	switch s {
	case "eco":
		return dispatch.Eco, nil
	case "sport":
		return dispatch.Sport, nil
	case "turbo":
		return dispatch.Turbo, nil
	default:
		return dispatch.Eco, fmt.Errorf("unknown mode %q: want eco, sport, or turbo", s)
	}
}

func openIO(args []string) (io.ReadCloser, io.WriteCloser, error) {
	var in io.ReadCloser = io.NopCloser(os.Stdin)
	var out io.WriteCloser = nopWriteCloser{os.Stdout}

	if len(args) >= 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, nil, err
		}
		in = f
	}
	if len(args) >= 2 && args[1] != "-" {
		f, err := os.Create(args[1])
		if err != nil {
			return nil, nil, err
		}
		out = f
	}
	return in, out, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
