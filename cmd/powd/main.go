// Copyright 2024 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "go.uber.org/automaxprocs"

	"github.com/blinklabs-io/powd/internal/config"
	"github.com/blinklabs-io/powd/internal/indexer"
	"github.com/blinklabs-io/powd/internal/logging"
	"github.com/blinklabs-io/powd/internal/metrics"
	"github.com/blinklabs-io/powd/internal/state"
	"github.com/blinklabs-io/powd/internal/version"
	"github.com/blinklabs-io/powd/pow"
)

const usage = `usage: powd [-config file] <command> [args]

commands:
  import <file>          import hex-encoded headers, one per line
  next [-time unix]      print the bits required for the next block
  verify                 re-validate the stored header chain
  check <hash> <bits>    check a block hash against compact bits (hex)
  serve                  serve metrics and debug listeners
  version                print the version
`

var cmdlineFlags struct {
	configFile string
}

func main() {
	flag.StringVar(
		&cmdlineFlags.configFile,
		"config",
		"",
		"path to config file to load",
	)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Setup()
	logger := logging.GetLogger()

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	err = run(ctx, cfg, flag.Arg(0), flag.Args()[1:])
	stop()
	// Sync logger before exit
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", flag.Arg(0), err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string) error {
	params, err := cfg.ConsensusParams()
	if err != nil {
		return err
	}
	switch cmd {
	case "version":
		fmt.Printf("powd %s\n", version.GetVersionString())
		return nil
	case "check":
		return cmdCheck(&params, args)
	case "import", "next", "verify", "serve":
	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}

	logger := logging.GetLogger()
	logger.Infof(
		"powd %s started on network %s",
		version.GetVersionString(),
		params.Name,
	)

	// Load state
	if err := state.GetState().Load(); err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}
	defer func() {
		if err := state.GetState().Close(); err != nil {
			logger.Errorf("failed to close state: %s", err)
		}
	}()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	idx := indexer.New(state.GetState(), params, m)

	switch cmd {
	case "import":
		return cmdImport(ctx, idx, args)
	case "next":
		return cmdNext(idx, args)
	case "verify":
		return cmdVerify(ctx, idx)
	default:
		return cmdServe(ctx, cfg, idx)
	}
}

func cmdImport(ctx context.Context, idx *indexer.Indexer, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one header file")
	}
	count, err := idx.ImportFile(ctx, args[0])
	logging.GetLogger().Infof("imported %d headers from %s", count, args[0])
	return err
}

func cmdNext(idx *indexer.Indexer, args []string) error {
	fs := flag.NewFlagSet("next", flag.ContinueOnError)
	candidateTime := fs.Int64(
		"time",
		time.Now().Unix(),
		"timestamp of the candidate block",
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	bits, algorithm, err := idx.NextRequiredBits(*candidateTime)
	if err != nil {
		return err
	}
	target, _, _ := pow.CompactToTarget(bits)
	fmt.Printf("bits:      %08x\n", bits)
	fmt.Printf("target:    %s\n", target.Hex())
	fmt.Printf("algorithm: %s\n", algorithm)
	return nil
}

func cmdVerify(ctx context.Context, idx *indexer.Indexer) error {
	start := time.Now()
	tip, err := idx.Verify(ctx)
	if err != nil {
		return fmt.Errorf("verification failed after height %d: %w", tip, err)
	}
	if tip < 0 {
		fmt.Println("header index is empty")
		return nil
	}
	fmt.Printf(
		"verified %d headers in %s\n",
		tip+1,
		time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func cmdCheck(params *pow.Params, args []string) error {
	if len(args) != 2 {
		return errors.New("expected a block hash and compact bits")
	}
	hash, err := pow.NewHashFromString(args[0])
	if err != nil {
		return fmt.Errorf("invalid block hash: %w", err)
	}
	bits, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid bits: %w", err)
	}
	if !pow.CheckProofOfWork(hash, uint32(bits), params) {
		return fmt.Errorf("hash %s does not satisfy bits %08x", hash, bits)
	}
	fmt.Printf("hash %s satisfies bits %08x\n", hash, bits)
	return nil
}

func cmdServe(ctx context.Context, cfg *config.Config, idx *indexer.Indexer) error {
	logger := logging.GetLogger()

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Infof(
			"starting debug listener on %s:%d",
			cfg.Debug.ListenAddress,
			cfg.Debug.ListenPort,
		)
		go func() {
			// nolint:gosec
			err := http.ListenAndServe(
				fmt.Sprintf(
					"%s:%d",
					cfg.Debug.ListenAddress,
					cfg.Debug.ListenPort,
				),
				nil,
			)
			if err != nil {
				logger.Fatalf("failed to start debug listener: %s", err)
			}
		}()
	}

	// Start metrics listener
	if cfg.Metrics.ListenPort > 0 {
		logger.Infof(
			"starting metrics listener on %s:%d",
			cfg.Metrics.ListenAddress,
			cfg.Metrics.ListenPort,
		)
		go func() {
			err := metrics.Start(
				cfg.Metrics.ListenAddress,
				cfg.Metrics.ListenPort,
				prometheus.DefaultGatherer,
			)
			if err != nil {
				logger.Fatalf("failed to start metrics listener: %s", err)
			}
		}()
	}

	if bits, algorithm, err := idx.NextRequiredBits(time.Now().Unix()); err == nil {
		logger.Infof("next block requires bits %08x (%s)", bits, algorithm)
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
