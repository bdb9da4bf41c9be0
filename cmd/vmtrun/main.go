// Package main provides the headless runner entry point for a VMT
// simulation: load a scenario and an engine config, run ticks to the
// scenario's declared bound (or until interrupted), and exit with a status
// code reflecting how the run ended.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cmfunderburk/vmt/internal/diagnostics"
	"github.com/cmfunderburk/vmt/internal/engine"
	"github.com/cmfunderburk/vmt/internal/scenario"
	"github.com/cmfunderburk/vmt/internal/statusserver"
	"github.com/cmfunderburk/vmt/internal/telemetry"
	"github.com/cmfunderburk/vmt/internal/vmtconfig"
)

// Exit codes: 0 success, 1 startup/configuration failure, 2 a contract
// violation was observed mid-run.
const (
	exitOK                = 0
	exitStartupFailure    = 1
	exitContractViolation = 2
)

// runner bundles everything one run needs, mirroring a Bot's role as the
// single owner of every collaborator.
type runner struct {
	sim        *engine.Simulation
	sink       *telemetry.JSONLSink
	statusSrv  *statusserver.Server
	logger     *log.Logger
	cfg        *vmtconfig.Config
	stop       chan struct{}
}

func main() {
	os.Exit(run())
}

func run() int {
	var scenarioPath, configPath string
	var seedOverride uint64
	var haveSeed bool
	flag.StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML document (required)")
	flag.StringVar(&configPath, "config", "vmt.yaml", "Path to engine config file")
	flag.Func("seed", "RNG seed; overrides safety.seed_override and the default of 42", func(s string) error {
		var v uint64
		if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
			return err
		}
		seedOverride, haveSeed = v, true
		return nil
	})
	flag.Parse()

	logger := log.New(os.Stdout, "[vmtrun] ", log.LstdFlags)

	if scenarioPath == "" {
		logger.Println("missing required -scenario flag")
		return exitStartupFailure
	}

	cfg, err := vmtconfig.Load(configPath)
	if err != nil {
		logger.Printf("loading engine config: %v", err)
		return exitStartupFailure
	}

	doc, err := scenario.Load(scenarioPath)
	if err != nil {
		logger.Printf("loading scenario: %v", err)
		return exitStartupFailure
	}

	seed := uint64(42)
	if cfg.Safety.SeedOverride != nil {
		seed = *cfg.Safety.SeedOverride
	}
	if haveSeed {
		seed = seedOverride
	}

	telemetryLogger := logrus.New()
	telemetryLogger.SetOutput(os.Stdout)
	telemetryLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(cfg.Environment.LogLevel); err == nil {
		telemetryLogger.SetLevel(lvl)
	}

	sink, err := telemetry.NewJSONLSink(cfg.Telemetry.Path, telemetryLogger)
	if err != nil {
		logger.Printf("initializing telemetry sink: %v", err)
		return exitStartupFailure
	}
	defer func() {
		if err := sink.Close(); err != nil {
			logger.Printf("closing telemetry sink: %v", err)
		}
	}()

	sim, err := engine.NewWithLogger(doc, seed, sink, logger)
	if err != nil {
		logger.Printf("constructing simulation: %v", err)
		return exitStartupFailure
	}

	r := &runner{sim: sim, sink: sink, logger: logger, cfg: cfg, stop: make(chan struct{})}

	if cfg.Status.Enabled {
		r.statusSrv = statusserver.NewServer(
			statusserver.Config{Port: cfg.Status.Port, AuthToken: cfg.Status.AuthToken},
			sim, telemetryLogger,
		)
		go func() {
			if err := r.statusSrv.Start(); err != nil && err != http.ErrServerClosed {
				logger.Printf("status server error: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.statusSrv.Shutdown(shutdownCtx); err != nil {
				logger.Printf("status server shutdown: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("shutdown signal received, stopping after current tick")
		close(r.stop)
	}()

	return r.loop(cfg.Safety.MaxTicks)
}

func (r *runner) loop(maxTicks int64) int {
	ticks := int64(0)
	for !r.sim.Done() {
		select {
		case <-r.stop:
			r.sim.Stop()
			r.logger.Printf("stopped at tick %d", r.sim.Tick())
			return exitOK
		default:
		}

		if err := r.sim.Step(); err != nil {
			var cv *diagnostics.Error
			if errors.As(err, &cv) && cv.Fatal() {
				r.logger.Printf("contract violation at tick %d: %v", r.sim.Tick(), cv)
				return exitContractViolation
			}
			r.logger.Printf("stopping: %v", err)
			return exitOK
		}

		ticks++
		if ticks >= maxTicks {
			r.logger.Printf("reached safety cap of %d ticks", maxTicks)
			return exitOK
		}
	}

	r.logger.Printf("simulation reached tick bound at tick %d", r.sim.Tick())
	return exitOK
}
