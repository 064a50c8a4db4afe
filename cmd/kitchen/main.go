package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"kitchen-dispatcher/internal/config"
	"kitchen-dispatcher/internal/kitchen"
	"kitchen-dispatcher/internal/loader"
)

func main() {
	ordersPath := flag.String("orders", "", "path to the orders JSON file (required)")
	configPath := flag.String("config", "", "path to the config JSON file (required)")
	debugLevel := flag.Int("debug_level", 0, "verbosity: 0=warn, 1=info, 2=debug")
	orderLimit := flag.Int("order_limit", loader.DefaultLimit, "max orders to load from the orders file (0 = no limit)")
	flag.Parse()

	if *ordersPath == "" || *configPath == "" {
		fmt.Fprintln(os.Stderr, "--orders and --config are both required")
		os.Exit(1)
	}

	log := newLogger(*debugLevel)
	defer log.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	orders, err := loader.Load(*ordersPath, *orderLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading orders: %v\n", err)
		os.Exit(1)
	}

	runID := uuid.New().String()
	log = log.With(zap.String("run_id", runID))

	k := kitchen.New(orders, cfg, log)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	done := make(chan kitchen.Counters, 1)
	go func() { done <- k.Run() }()

	select {
	case counters := <-done:
		log.Infow("simulation completed",
			"total", counters.Total,
			"delivered", counters.Delivered,
			"wasted", counters.Wasted,
			"active", counters.Active,
		)
	case <-sig:
		log.Warnw("received interrupt, shutting down")
		k.Stop()
		<-done
		log.Infow("shutdown complete")
	}
}

func newLogger(debugLevel int) *zap.SugaredLogger {
	var level zapcore.Level
	switch debugLevel {
	case 1:
		level = zapcore.InfoLevel
	case 2:
		level = zapcore.DebugLevel
	default:
		level = zapcore.WarnLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		// Logger construction failure leaves us unable to emit
		// structured output at all; fall back to stderr and bail.
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	return logger.Sugar()
}
