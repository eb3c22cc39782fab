// Command ebx-miner runs the mining control loop: it loads its
// configuration entirely from the environment, opens the header-chain
// database, and ticks the loop until an error or signal.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"earthbucks.dev/ebx-miner/keys"
	"earthbucks.dev/ebx-miner/mining"
	"earthbucks.dev/ebx-miner/mining/store"
	"earthbucks.dev/ebx-miner/tx"
)

func main() {
	os.Exit(run())
}

func run() int {
	debug := flag.Bool("log-level-debug", false, "enable debug-level logging")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		return 1
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := mining.LoadEnvConfig()
	if err != nil {
		logger.Error("startup configuration invalid", zap.Error(err))
		return 1
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", zap.Error(err))
		return 1
	}
	defer func() { _ = db.Close() }()

	coinbase := coinbaseBuilder(cfg.CoinbasePkh, cfg.Domain)
	loop := mining.NewLoop(db, cfg, logger, coinbase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loop.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("shutting down on signal")
			return 0
		}
		var fatal *mining.FatalError
		if errors.As(err, &fatal) {
			logger.Error("mining loop terminated with fatal error", zap.Error(fatal))
			return 1
		}
		logger.Error("mining loop terminated with propagated error", zap.Error(err))
		return 1
	}
	return 0
}

func coinbaseBuilder(pkh keys.Pkh, domain string) mining.CoinbaseBuilder {
	return func(blockNum uint64) tx.Tx {
		return tx.NewCoinbase([32]byte(pkh), domain, blockNum)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
