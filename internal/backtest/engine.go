package backtest

// engine.go — orquestador de un run: fetch → validar → señales → simular →
// métricas. Cada run es independiente y no comparte estado mutable con
// otros runs ni con el ledger.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/adelgadom/papertrade/internal/domain"
	"github.com/adelgadom/papertrade/internal/ports"
	"github.com/adelgadom/papertrade/internal/strategy"
)

// Config contiene la configuración de un Engine.
type Config struct {
	InitialBalance float64
	// PeriodsPerYear anualiza el Sharpe por bar size. Si está vacío se usa
	// DefaultPeriodsPerYear.
	PeriodsPerYear map[domain.BarSize]float64
	// ExtraOverlays añade RSI(14) y ATR(14) a los overlays del chart.
	ExtraOverlays bool
	Sim           SimConfig
}

// Engine ejecuta backtests completos contra un proveedor de velas.
type Engine struct {
	cfg       Config
	bars      ports.BarProvider
	generator *strategy.Generator
	simulator *Simulator
}

// New crea un Engine con el generador de señales dado. Si generator es nil
// usa la estrategia 9/20/200 por defecto.
func New(cfg Config, bars ports.BarProvider, generator *strategy.Generator) *Engine {
	if generator == nil {
		generator = strategy.NewDefaultGenerator()
	}
	return &Engine{
		cfg:       cfg,
		bars:      bars,
		generator: generator,
		simulator: NewSimulator(cfg.Sim),
	}
}

// Run ejecuta un backtest y devuelve el resultado completo. Los errores de
// datos (serie corta o malformada) abortan solo este run; el estado del
// ledger nunca se toca desde aquí.
func (e *Engine) Run(
	ctx context.Context,
	symbol string,
	from, to time.Time,
	size domain.BarSize,
) (domain.BacktestResult, error) {
	if !size.Valid() {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: unsupported bar size %q", size)
	}
	if e.cfg.InitialBalance < 0 {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: negative initial balance %.2f", e.cfg.InitialBalance)
	}

	start := time.Now()

	bars, err := e.bars.FetchBars(ctx, symbol, from, to, size)
	if err != nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: fetch bars for %s: %w", symbol, err)
	}
	if err := domain.ValidateSeries(bars); err != nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: %s: %w", symbol, err)
	}

	signals, err := e.generator.Generate(bars)
	if err != nil {
		return domain.BacktestResult{}, fmt.Errorf("backtest.Run: %s: %w", symbol, err)
	}

	trades, equity := e.simulator.Run(bars, signals, e.cfg.InitialBalance)

	ppy := e.periodsPerYear(size)
	result := domain.BacktestResult{
		RunID:          uuid.New().String(),
		Symbol:         symbol,
		BarSize:        size,
		InitialBalance: e.cfg.InitialBalance,
		Bars:           bars,
		Trades:         trades,
		Equity:         equity,
		PNL:            PNLSeries(e.cfg.InitialBalance, equity),
		Overlays:       e.overlays(bars),
		Metrics:        ComputeMetrics(e.cfg.InitialBalance, equity, trades, ppy),
	}

	slog.Info("backtest complete",
		"run_id", result.RunID,
		"symbol", symbol,
		"bars", len(bars),
		"signals", len(signals),
		"trades", len(trades),
		"final_balance", fmt.Sprintf("%.2f", result.Metrics.FinalBalance),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func (e *Engine) periodsPerYear(size domain.BarSize) float64 {
	if v, ok := e.cfg.PeriodsPerYear[size]; ok && v > 0 {
		return v
	}
	return DefaultPeriodsPerYear[size]
}

// overlays calcula las series de indicadores para el chart.
func (e *Engine) overlays(bars []domain.Bar) map[string][]domain.OverlayPoint {
	fast, mid, slow := e.generator.Periods()
	out := map[string][]domain.OverlayPoint{
		fmt.Sprintf("ema%d", fast): strategy.EMASeries(bars, fast),
		fmt.Sprintf("ema%d", mid):  strategy.EMASeries(bars, mid),
		fmt.Sprintf("ema%d", slow): strategy.EMASeries(bars, slow),
	}
	if e.cfg.ExtraOverlays {
		out["rsi14"] = strategy.RSISeries(bars, 14)
		out["atr14"] = strategy.ATRSeries(bars, 14)
	}
	return out
}
