// Package main provides a parameter-sweep launcher: it runs the same
// scenario to completion under N different seeds concurrently, each with
// its own telemetry log, and reports a summary once every run finishes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/cmfunderburk/vmt/internal/diagnostics"
	"github.com/cmfunderburk/vmt/internal/engine"
	"github.com/cmfunderburk/vmt/internal/scenario"
	"github.com/cmfunderburk/vmt/internal/telemetry"
)

func main() {
	os.Exit(run())
}

type runResult struct {
	seed  uint64
	ticks int64
	err   error
}

func run() int {
	var scenarioPath, outDir string
	var runs int
	var baseSeed uint64
	flag.StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML document (required)")
	flag.StringVar(&outDir, "out", "sweep-out", "Directory to write each run's telemetry log into")
	flag.IntVar(&runs, "runs", 8, "Number of concurrent runs")
	flag.Func("base-seed", "First seed in the sweep; run i uses base-seed+i", func(s string) error {
		_, err := fmt.Sscanf(s, "%d", &baseSeed)
		return err
	})
	flag.Parse()

	logger := log.New(os.Stdout, "[vmtsweep] ", log.LstdFlags)

	if scenarioPath == "" {
		logger.Println("missing required -scenario flag")
		return 1
	}
	if runs <= 0 {
		logger.Println("-runs must be positive")
		return 1
	}

	doc, err := scenario.Load(scenarioPath)
	if err != nil {
		logger.Printf("loading scenario: %v", err)
		return 1
	}

	if err := os.MkdirAll(outDir, 0o700); err != nil {
		logger.Printf("creating output directory: %v", err)
		return 1
	}

	results := make([]runResult, runs)

	var group errgroup.Group
	for i := 0; i < runs; i++ {
		i := i
		group.Go(func() error {
			results[i] = runOne(doc, baseSeed+uint64(i), outDir, logger)
			return nil
		})
	}
	// group.Wait's error is always nil: each runOne captures its own error
	// in results rather than aborting sibling runs, so one run's failure
	// never cancels the others' progress.
	_ = group.Wait()

	failures := 0
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			failures++
			status = r.err.Error()
		}
		logger.Printf("seed=%d ticks=%d status=%s", r.seed, r.ticks, status)
	}

	if failures > 0 {
		logger.Printf("%d/%d runs failed", failures, runs)
		return 2
	}
	return 0
}

func runOne(doc *scenario.Document, seed uint64, outDir string, baseLogger *log.Logger) runResult {
	runLogger := log.New(os.Stdout, fmt.Sprintf("[vmtsweep seed=%d] ", seed), log.LstdFlags)

	sinkPath := filepath.Join(outDir, fmt.Sprintf("seed-%d.jsonl", seed))
	sink, err := telemetry.NewJSONLSink(sinkPath, nil)
	if err != nil {
		return runResult{seed: seed, err: fmt.Errorf("telemetry: %w", err)}
	}
	defer func() {
		if err := sink.Close(); err != nil {
			baseLogger.Printf("seed=%d: closing telemetry sink: %v", seed, err)
		}
	}()

	sim, err := engine.NewWithLogger(doc, seed, sink, runLogger)
	if err != nil {
		return runResult{seed: seed, err: fmt.Errorf("constructing simulation: %w", err)}
	}

	var ticks int64
	for !sim.Done() {
		if err := sim.Step(); err != nil {
			var cv *diagnostics.Error
			if errors.As(err, &cv) && cv.Fatal() {
				return runResult{seed: seed, ticks: ticks, err: cv}
			}
			break
		}
		ticks++
	}

	return runResult{seed: seed, ticks: ticks}
}
