package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"

	"github.com/adelgadom/papertrade/config"
	"github.com/adelgadom/papertrade/internal/portfolio"
	"github.com/adelgadom/papertrade/internal/ports"
)

type portfolioArgs struct {
	action string
	ticker string
	shares int64
	price  float64
	basis  float64
}

// runPortfolio aplica una acción sobre el ledger persistente y muestra el
// snapshot resultante. Los errores de validación del ledger se reportan como
// mensajes estructurados, nunca como stack traces.
func runPortfolio(
	ctx context.Context,
	cfg *config.Config,
	store ports.LedgerStore,
	notifier ports.Notifier,
	args portfolioArgs,
) {
	ledger, err := portfolio.New(ctx, decimal.NewFromFloat(cfg.Backtest.InitialBalance), store)
	if err != nil {
		slog.Error("failed to open ledger", "err", err)
		os.Exit(1)
	}

	switch args.action {
	case "show":
		// solo el snapshot

	case "buy":
		requireTicker(args)
		if err := ledger.Buy(ctx, args.ticker, args.shares, decimal.NewFromFloat(args.price)); err != nil {
			slog.Error("buy rejected", "ticker", args.ticker, "err", err)
			os.Exit(1)
		}

	case "sell":
		requireTicker(args)
		if err := ledger.Sell(ctx, args.ticker, args.shares, decimal.NewFromFloat(args.price)); err != nil {
			slog.Error("sell rejected", "ticker", args.ticker, "err", err)
			os.Exit(1)
		}

	case "add":
		requireTicker(args)
		err := ledger.ForceAdd(ctx, args.ticker, args.shares,
			decimal.NewFromFloat(args.price), decimal.NewFromFloat(args.basis))
		if err != nil {
			slog.Error("force-add rejected", "ticker", args.ticker, "err", err)
			os.Exit(1)
		}

	default:
		slog.Error("unknown portfolio action, want buy|sell|add|show", "got", args.action)
		os.Exit(2)
	}

	if err := notifier.NotifySnapshot(ctx, ledger.Snapshot()); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func requireTicker(args portfolioArgs) {
	if args.ticker == "" {
		slog.Error("missing -ticker for portfolio action", "action", args.action)
		os.Exit(2)
	}
}
