// cemconv converts mesh models between the flat-indexed runtime
// container and split-indexed authoring formats (OBJ, COLLADA).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/coderbot16/cemconv/internal/config"
	"github.com/coderbot16/cemconv/internal/convert"
	"github.com/coderbot16/cemconv/internal/logger"
)

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Convert.OutputFormat == "" {
		fmt.Fprintln(os.Stderr, "cemconv: an output format is required (-f)")
		printUsage()
		os.Exit(2)
	}

	input, err := convert.ParseFormat(cfg.Convert.InputFormat, cfg.Convert.FrameIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: input format: %v\n", err)
		os.Exit(2)
	}
	output, err := convert.ParseFormat(cfg.Convert.OutputFormat, cfg.Convert.FrameIndex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: output format: %v\n", err)
		os.Exit(2)
	}

	if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "cemconv: too many arguments")
		printUsage()
		os.Exit(2)
	}

	in, err := openInput(config.InputPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	// The output file is created only once the input is known to open.
	out, err := openOutput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: %v\n", err)
		os.Exit(1)
	}

	if err := convert.Convert(in, out, input, output, logger.Log); err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: converting %s to %s: %v\n", input, output, err)
		out.Close()
		os.Exit(1)
	}

	if err := out.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "cemconv: %v\n", err)
		os.Exit(1)
	}
}

// openInput opens the -i path, defaulting to stdin. "-" also means
// stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input %s: %w", path, err)
	}
	return file, nil
}

// openOutput resolves the positional output path, defaulting to
// stdout. "-" also means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output %s: %w", path, err)
	}
	return file, nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `cemconv - mesh model converter

Usage:
  cemconv -f <format> [-g <format>] [-i <input>] [-n <frame>] [output]

Formats:
  cem, cem2, ssmf   runtime model container (v2.0)
  cem1.3            legacy container (recognized, not convertible)
  obj               Wavefront OBJ text
  dae, collada      COLLADA markup

Options:
  -f <format>       output format (required)
  -g <format>       input format (default cem)
  -i <path>         input file, default is stdin
  -n <frame>        frame to extract for single-frame outputs (default 0)
  -config <path>    config file path
  -log-file <path>  write logs to this file
  -debug            enable debug logging

The output defaults to stdout; "-" selects the standard streams
explicitly.

Examples:
  cemconv -g obj -f cem2 -i model.obj model.cem
  cemconv -f dae -i model.cem model.dae
  cemconv -f obj -n 4 -i animated.cem frame4.obj`)
}
