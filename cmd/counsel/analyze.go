package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/JaimeStill/counsel/internal/config"
	"github.com/JaimeStill/counsel/internal/documents"
	"github.com/JaimeStill/counsel/internal/infrastructure"
	"github.com/JaimeStill/counsel/internal/report"
	"github.com/JaimeStill/counsel/workflow"
)

type analyzeFlags struct {
	verbose bool
	json    bool
	blob    bool
	config  string
	path    string
}

func parseAnalyzeFlags(args []string, stderr io.Writer) (*analyzeFlags, error) {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}

	f := &analyzeFlags{}
	fs.BoolVar(&f.verbose, "verbose", false, "print each pipeline node as it completes")
	fs.BoolVar(&f.json, "json", false, "print the final state as JSON")
	fs.BoolVar(&f.blob, "blob", false, "treat <path> as a key in the configured blob store")
	fs.StringVar(&f.config, "config", "", "path to the TOML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errors.New("exactly one contract path required")
	}
	f.path = fs.Arg(0)
	return f, nil
}

func analyze(ctx context.Context, args []string, stdout, stderr io.Writer, opts infrastructure.Options) int {
	f, err := parseAnalyzeFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		fmt.Fprintf(stderr, "config load failed: %v\n", err)
		return exitUsage
	}
	if f.verbose {
		cfg.Logging.Level = "debug"
	}

	if opts.LogOutput == nil {
		opts.LogOutput = stderr
	}
	if opts.TraceOutput == nil {
		opts.TraceOutput = stderr
	}

	infra, err := infrastructure.New(ctx, cfg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "init failed: %v\n", err)
		return exitUsage
	}
	defer func() {
		if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			infra.Logger.Warn("shutdown incomplete", "error", err)
		}
	}()

	if err := infra.Start(); err != nil {
		fmt.Fprintf(stderr, "start failed: %v\n", err)
		return exitUsage
	}

	src, err := stage(ctx, infra, f)
	if err != nil {
		fmt.Fprintf(stderr, "input: %v\n", err)
		return exitUsage
	}
	defer src.Close()

	text := !f.json
	if text {
		fmt.Fprintf(stdout, "Analysing contract: %s\n", f.path)
		fmt.Fprintln(stdout, "Building agent pipeline...")
	}

	pipeline, err := infra.NewPipeline()
	if err != nil {
		fmt.Fprintf(stderr, "pipeline build failed: %v\n", err)
		return exitPipeline
	}

	if text {
		fmt.Fprintln(stdout, "Running analysis pipeline...")
		fmt.Fprintln(stdout)
	}

	var progress func(workflow.Update)
	if f.verbose {
		progress = func(u workflow.Update) {
			fmt.Fprintf(stdout, "  ✓ Completed: %s\n", u.Node)
		}
	}

	result, runErr := pipeline.Run(ctx, src.Path, progress)
	infra.Metrics.ObserveRun(result)
	if runErr != nil {
		infra.Logger.Error("pipeline aborted", "error", runErr)
	}

	if f.json {
		err = report.JSON(stdout, result)
	} else {
		err = report.Text(stdout, result.State)
	}
	if err != nil {
		fmt.Fprintf(stderr, "write report: %v\n", err)
		return exitPipeline
	}

	if runErr != nil || !result.State.Completed() {
		return exitPipeline
	}
	return exitOK
}

func stage(ctx context.Context, infra *infrastructure.Infrastructure, f *analyzeFlags) (*documents.Source, error) {
	if f.blob {
		return documents.FromBlob(ctx, infra.Storage, f.path, 0)
	}
	return documents.Local(f.path)
}
