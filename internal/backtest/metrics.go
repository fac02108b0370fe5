package backtest

// metrics.go — cálculo de métricas de riesgo/rendimiento a partir de la
// traza de equity. Función pura: mismos inputs → mismas métricas.

import (
	"math"

	"github.com/adelgadom/papertrade/internal/domain"
)

// DefaultPeriodsPerYear mapea bar size → períodos por año para anualizar el
// Sharpe. Tabla explícita, no inferida ad hoc. 1 hour ≈ 252 sesiones × 6.5h.
var DefaultPeriodsPerYear = map[domain.BarSize]float64{
	domain.BarSize1Hour:  1638,
	domain.BarSize1Day:   252,
	domain.BarSize1Week:  52,
	domain.BarSize1Month: 12,
}

// ComputeMetrics deriva las métricas del run. Una traza vacía o de un solo
// punto produce métricas todo-cero, no un error.
func ComputeMetrics(
	initialBalance float64,
	equity []domain.EquityPoint,
	trades []domain.Trade,
	periodsPerYear float64,
) domain.Metrics {
	var m domain.Metrics
	if len(equity) < 2 {
		return m
	}

	m.FinalBalance = equity[len(equity)-1].Balance
	if initialBalance > 0 {
		m.TotalReturnPct = (m.FinalBalance - initialBalance) / initialBalance * 100
	}
	m.MaxDrawdownPct = maxDrawdown(equity)
	m.SharpeRatio = sharpe(equity, periodsPerYear)
	fillTradeRollups(&m, trades)
	return m
}

// PNLSeries convierte la traza de equity en la serie PNL% relativa al
// balance inicial, lista para el chart.
func PNLSeries(initialBalance float64, equity []domain.EquityPoint) []domain.PNLPoint {
	if initialBalance <= 0 {
		return nil
	}
	out := make([]domain.PNLPoint, 0, len(equity))
	for _, p := range equity {
		out = append(out, domain.PNLPoint{
			Date:  p.Date,
			Value: (p.Balance/initialBalance - 1) * 100,
		})
	}
	return out
}

// maxDrawdown devuelve la mayor caída pico-valle como porcentaje positivo
// del pico.
func maxDrawdown(equity []domain.EquityPoint) float64 {
	peak := equity[0].Balance
	maxDD := 0.0
	for _, p := range equity {
		if p.Balance > peak {
			peak = p.Balance
		}
		if peak > 0 {
			if dd := (peak - p.Balance) / peak * 100; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// sharpe calcula mean(r)/stdev(r) sobre los retornos por bar, anualizado
// con sqrt(periodsPerYear). Con stdev 0 (serie plana o de un bar) devuelve
// 0 en vez de dividir por cero.
func sharpe(equity []domain.EquityPoint, periodsPerYear float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Balance
		if prev == 0 {
			return 0
		}
		returns = append(returns, equity[i].Balance/prev-1)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	stdev := math.Sqrt(variance)
	if stdev == 0 {
		return 0
	}
	return mean / stdev * math.Sqrt(periodsPerYear)
}

// fillTradeRollups agrega win rate y profit factor desde las filas SELL.
func fillTradeRollups(m *domain.Metrics, trades []domain.Trade) {
	var wins, closed int
	var gain, loss float64
	for _, t := range trades {
		if t.Action != domain.ActionSell || t.PnLPercent == nil {
			continue
		}
		closed++
		if *t.PnLPercent > 0 {
			wins++
			gain += *t.PnLPercent
		} else {
			loss += -*t.PnLPercent
		}
	}

	m.TradeCount = closed
	if closed > 0 {
		m.WinRate = 100 * float64(wins) / float64(closed)
	}
	if loss > 0 {
		m.ProfitFactor = gain / loss
	} else if gain > 0 {
		m.ProfitFactor = math.Inf(1)
	}
}
