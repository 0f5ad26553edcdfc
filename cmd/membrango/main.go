package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/membrango/membrango/internal/app"
	"github.com/membrango/membrango/internal/cli"
)

// main is the entrypoint for the membrango binary.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error
// handling.
func run(out io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	a, err := app.New(out, cfg)
	if err != nil {
		return err
	}
	return a.Run(context.Background())
}
