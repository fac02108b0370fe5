package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adelgadom/papertrade/config"
	"github.com/adelgadom/papertrade/internal/adapters/marketdata"
	"github.com/adelgadom/papertrade/internal/adapters/notify"
	"github.com/adelgadom/papertrade/internal/adapters/storage"
	"github.com/adelgadom/papertrade/internal/backtest"
	"github.com/adelgadom/papertrade/internal/domain"
	"github.com/adelgadom/papertrade/internal/ports"
	"github.com/adelgadom/papertrade/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")

	// backtest
	runBT := flag.Bool("backtest", false, "run a backtest")
	symbol := flag.String("symbol", "", "ticker symbol, e.g. AAPL")
	from := flag.String("from", "", "start date YYYY-MM-DD")
	to := flag.String("to", "", "end date YYYY-MM-DD")
	barSize := flag.String("barsize", "1 day", "bar size: 1 hour|1 day|1 week|1 month")
	balance := flag.Float64("balance", 0, "initial demo balance (overrides config)")
	csvPath := flag.String("csv", "", "load bars from a CSV file instead of the API")

	// portfolio
	portfolioAction := flag.String("portfolio", "", "portfolio action: buy|sell|add|show")
	ticker := flag.String("ticker", "", "ticker for portfolio actions")
	shares := flag.Int64("shares", 0, "shares for portfolio actions")
	price := flag.Float64("price", 0, "price for portfolio actions")
	basis := flag.Float64("basis", 0, "cost basis for -portfolio add")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load config", "err", err, "path", *configPath)
			os.Exit(1)
		}
		cfg = config.Default()
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	notifier := notify.NewConsole(*table)

	switch {
	case *runBT:
		if *balance > 0 {
			cfg.Backtest.InitialBalance = *balance
		}

		var bars ports.BarProvider
		if *csvPath != "" {
			bars = marketdata.NewCSVProvider(*csvPath)
		} else {
			bars = marketdata.NewClient(cfg.API.MarketDataBase)
		}

		engine := backtest.New(engineConfig(cfg, domain.BarSize(*barSize)), bars, buildGenerator(cfg))
		runBacktest(ctx, engine, notifier, *symbol, *from, *to, *barSize)

	case *portfolioAction != "":
		store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open ledger storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()

		runPortfolio(ctx, cfg, store, notifier, portfolioArgs{
			action: *portfolioAction,
			ticker: *ticker,
			shares: *shares,
			price:  *price,
			basis:  *basis,
		})

	default:
		flag.Usage()
		os.Exit(2)
	}
}

// engineConfig traduce la config YAML a la config del engine.
func engineConfig(cfg *config.Config, size domain.BarSize) backtest.Config {
	sim := backtest.SimConfig{
		CommissionPerTrade: cfg.Backtest.CommissionPerTrade,
		SlippageBps:        cfg.Backtest.SlippageBps,
	}
	if cfg.Backtest.Limits.Enabled {
		sim.Limits = backtest.NewLimits(backtest.LimitsConfig{
			MaxConsecutiveLosses: cfg.Backtest.Limits.MaxConsecutiveLosses,
			NoTradeWindow:        cfg.Backtest.Limits.NoTradeWindow(),
			Intraday:             size.Intraday(),
		})
	}
	return backtest.Config{
		InitialBalance: cfg.Backtest.InitialBalance,
		PeriodsPerYear: cfg.AnnualizationTable(),
		ExtraOverlays:  cfg.Backtest.ExtraOverlays,
		Sim:            sim,
	}
}

// buildGenerator construye el generador con la política de filtro configurada.
func buildGenerator(cfg *config.Config) *strategy.Generator {
	var filter strategy.TrendFilter
	switch cfg.Strategy.TrendFilter {
	case "mid_above_slow":
		filter = strategy.RequireMidAboveSlow
	case "none":
		filter = strategy.NoTrendFilter
	default:
		filter = strategy.SuppressBelowSlowEMA
	}
	return strategy.NewGenerator(
		cfg.Strategy.FastPeriod,
		cfg.Strategy.MidPeriod,
		cfg.Strategy.SlowPeriod,
		filter,
	)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
