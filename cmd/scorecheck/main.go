// Command scorecheck scores a live site from the command line and prints a
// text, Markdown or HTML report.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/casestudy/sitescore/internal/platform/config"
	"github.com/casestudy/sitescore/internal/platform/logger"
	"github.com/casestudy/sitescore/internal/sitescore"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "scorecheck: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("scorecheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		target  = fs.String("url", "", "Live site URL to score (required)")
		format  = fs.String("format", formatText, "Report format: text, markdown or html")
		out     = fs.String("out", "", "Write the report to this file instead of stdout")
		timeout = fs.Duration("timeout", cfg.AnalyzeTimeout, "Overall analysis timeout")
		private = fs.Bool("allow-private", cfg.AllowPrivateTargets, "Allow private and loopback targets")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *target == "" {
		fs.Usage()
		return errURLRequired
	}

	render, err := rendererFor(*format)
	if err != nil {
		return err
	}

	log := logger.New(stderr, cfg.LogLevel)
	engine := sitescore.NewDefaultEngine(sitescore.Options{
		UserAgent:       cfg.UserAgent,
		DocumentTimeout: cfg.DocumentFetchTimeout,
		AssetTimeout:    cfg.AssetFetchTimeout,
		AllowPrivate:    *private,
	}, log)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	result, err := engine.Analyze(ctx, *target)
	if err != nil {
		return err
	}

	report, err := render(newReport(*target, result, time.Since(start)))
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = io.WriteString(stdout, report)
		return err
	}
	return os.WriteFile(*out, []byte(report), 0o644)
}
