package backtest_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgadom/papertrade/internal/backtest"
	"github.com/adelgadom/papertrade/internal/domain"
)

// stubProvider devuelve una serie fija, sin red.
type stubProvider struct {
	bars []domain.Bar
	err  error
}

func (s *stubProvider) FetchBars(context.Context, string, time.Time, time.Time, domain.BarSize) ([]domain.Bar, error) {
	return s.bars, s.err
}

func fixedBars(n int, close float64) []domain.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      close,
			High:      close,
			Low:       close,
			Close:     close,
			Volume:    1000,
		}
	}
	return bars
}

func testRange() (time.Time, time.Time) {
	return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
}

func TestEngine_FlatSeriesNoTradesZeroMetrics(t *testing.T) {
	provider := &stubProvider{bars: fixedBars(200, 100)}
	engine := backtest.New(backtest.Config{InitialBalance: 10000}, provider, nil)

	from, to := testRange()
	result, err := engine.Run(context.Background(), "AAPL", from, to, domain.BarSize1Day)
	require.NoError(t, err)

	assert.Empty(t, result.Trades)
	assert.InDelta(t, 0.0, result.Metrics.TotalReturnPct, 1e-9)
	assert.InDelta(t, 0.0, result.Metrics.MaxDrawdownPct, 1e-9)
	assert.InDelta(t, 10000, result.Metrics.FinalBalance, 1e-9)

	assert.Len(t, result.Bars, 200)
	assert.Len(t, result.Equity, 200)
	assert.Len(t, result.PNL, 200)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "AAPL", result.Symbol)
}

func TestEngine_EmitsChartOverlays(t *testing.T) {
	provider := &stubProvider{bars: fixedBars(250, 100)}
	engine := backtest.New(backtest.Config{InitialBalance: 10000, ExtraOverlays: true}, provider, nil)

	from, to := testRange()
	result, err := engine.Run(context.Background(), "AAPL", from, to, domain.BarSize1Day)
	require.NoError(t, err)

	require.Contains(t, result.Overlays, "ema9")
	require.Contains(t, result.Overlays, "ema20")
	require.Contains(t, result.Overlays, "ema200")
	require.Contains(t, result.Overlays, "rsi14")
	require.Contains(t, result.Overlays, "atr14")

	// Cada serie empieza tras su warm-up.
	assert.Len(t, result.Overlays["ema9"], 250-9+1)
	assert.Len(t, result.Overlays["ema200"], 250-200+1)
}

func TestEngine_ShortSeriesReportsInsufficientData(t *testing.T) {
	provider := &stubProvider{bars: fixedBars(199, 100)}
	engine := backtest.New(backtest.Config{InitialBalance: 10000}, provider, nil)

	from, to := testRange()
	_, err := engine.Run(context.Background(), "AAPL", from, to, domain.BarSize1Day)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestEngine_MalformedSeriesFailsRun(t *testing.T) {
	bars := fixedBars(200, 100)
	bars[50].Timestamp = bars[49].Timestamp // duplicado

	engine := backtest.New(backtest.Config{InitialBalance: 10000}, &stubProvider{bars: bars}, nil)
	from, to := testRange()
	_, err := engine.Run(context.Background(), "AAPL", from, to, domain.BarSize1Day)
	assert.ErrorIs(t, err, domain.ErrMalformedBarSeries)
}

func TestEngine_UnsupportedBarSize(t *testing.T) {
	engine := backtest.New(backtest.Config{InitialBalance: 10000}, &stubProvider{}, nil)
	from, to := testRange()
	_, err := engine.Run(context.Background(), "AAPL", from, to, "3 days")
	assert.Error(t, err)
}

func TestEngine_Idempotent(t *testing.T) {
	// Serie con tendencia: baja, recupera, vuelve a bajar.
	bars := fixedBars(260, 100)
	for i := range bars {
		switch {
		case i < 210:
			bars[i].Close = 100 + float64(i)*0.1
		case i < 235:
			bars[i].Close = 121 - float64(i-210)*0.8
		default:
			bars[i].Close = 101 + float64(i-235)*0.9
		}
		bars[i].Open = bars[i].Close
		bars[i].High = bars[i].Close
		bars[i].Low = bars[i].Close
	}

	engine := backtest.New(backtest.Config{InitialBalance: 10000}, &stubProvider{bars: bars}, nil)
	from, to := testRange()

	first, err := engine.Run(context.Background(), "AAPL", from, to, domain.BarSize1Day)
	require.NoError(t, err)
	second, err := engine.Run(context.Background(), "AAPL", from, to, domain.BarSize1Day)
	require.NoError(t, err)

	// Mismo input → trades, equity y métricas bit-idénticos (el RunID no).
	assert.Equal(t, first.Trades, second.Trades)
	assert.Equal(t, first.Equity, second.Equity)
	assert.Equal(t, first.Metrics, second.Metrics)
	assert.NotEqual(t, first.RunID, second.RunID)
}
