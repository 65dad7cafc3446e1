// Package main runs one token scan and prints the report.
//
// Usage:
//
//	scanner [--classifier enhanced] [--format markdown|csv|json] [--out report.md]
//
// All scanner flags default to their environment variables (see internal/config).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"solana-token-scanner/internal/app"
	"solana-token-scanner/internal/config"
	"solana-token-scanner/internal/reporting"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	format := flag.String("format", "markdown", "Output format: markdown, csv, json")
	outPath := flag.String("out", "", "Write the report to this file instead of stdout")

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	render, err := rendererFor(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[scanner] ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, app.Options{Config: cfg, LogOutput: os.Stderr})
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}

	run, err := a.Orchestrator.Scan(ctx)
	if closeErr := a.Close(); closeErr != nil {
		logger.Printf("Close: %v", closeErr)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Println("Scan cancelled")
			os.Exit(130)
		}
		logger.Fatalf("Scan failed: %v", err)
	}

	output, err := render(run.Report)
	if err != nil {
		logger.Fatalf("Render report: %v", err)
	}

	if *outPath == "" {
		fmt.Print(output)
		return
	}
	if err := os.WriteFile(*outPath, []byte(output), 0644); err != nil {
		logger.Fatalf("Write %s: %v", *outPath, err)
	}
	logger.Printf("Wrote %s (%d tokens)", *outPath, run.Report.TokenCount)
}

type renderer func(*reporting.Report) (string, error)

// rendererFor resolves the output format before any scan is spent on it.
func rendererFor(format string) (renderer, error) {
	switch format {
	case "markdown", "md":
		return func(r *reporting.Report) (string, error) { return reporting.RenderMarkdown(r), nil }, nil
	case "csv":
		return func(r *reporting.Report) (string, error) { return reporting.RenderCSV(r), nil }, nil
	case "json":
		return func(r *reporting.Report) (string, error) {
			b, err := json.MarshalIndent(r, "", "  ")
			if err != nil {
				return "", err
			}
			return string(b) + "\n", nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want markdown, csv or json)", format)
	}
}
