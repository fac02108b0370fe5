package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/adelgadom/papertrade/internal/backtest"
	"github.com/adelgadom/papertrade/internal/domain"
	"github.com/adelgadom/papertrade/internal/ports"
)

// runBacktest parsea los argumentos del run, lo ejecuta y presenta el
// resultado. Una serie demasiado corta se reporta como aviso, no como crash.
func runBacktest(
	ctx context.Context,
	engine *backtest.Engine,
	notifier ports.Notifier,
	symbol, fromStr, toStr, barSize string,
) {
	if symbol == "" {
		slog.Error("missing -symbol")
		os.Exit(2)
	}

	from, to := parseDateRange(fromStr, toStr)

	result, err := engine.Run(ctx, symbol, from, to, domain.BarSize(barSize))
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientData) {
			slog.Warn("no backtest possible", "symbol", symbol, "reason", err)
			return
		}
		slog.Error("backtest failed", "symbol", symbol, "err", err)
		os.Exit(1)
	}

	if err := notifier.NotifyBacktest(ctx, result); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// parseDateRange parsea from/to; vacíos valen "último año hasta hoy".
func parseDateRange(fromStr, toStr string) (time.Time, time.Time) {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			slog.Error("bad -to date, want YYYY-MM-DD", "got", toStr)
			os.Exit(2)
		}
		to = parsed
	}

	from := to.AddDate(-1, 0, 0)
	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			slog.Error("bad -from date, want YYYY-MM-DD", "got", fromStr)
			os.Exit(2)
		}
		from = parsed
	}

	if !from.Before(to) {
		slog.Error("-from must be before -to", "from", fromStr, "to", toStr)
		os.Exit(2)
	}
	return from, to
}
