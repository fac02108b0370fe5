package backtest

// simulator.go — máquina de estados FLAT/LONG que ejecuta las señales
// contra un balance de cash.
//
// Reglas:
//   - FLAT + GoldenCross → compra floor(cash/close) acciones al cierre.
//     Si no alcanza ni para una acción, la transición es un no-op silencioso.
//   - LONG + DeathCross → vende todo al cierre y registra el PnL% del par.
//   - Cualquier otra señal en un estado dado se ignora.
//   - Una posición LONG abierta al final de la serie se valora mark-to-market
//     pero no se fuerza el cierre.

import (
	"math"
	"time"

	"github.com/adelgadom/papertrade/internal/domain"
)

// Estado explícito del autómata, no inferido de campos incidentales.
type positionState int

const (
	stateFlat positionState = iota
	stateLong
)

// position es el estado interno de la posición abierta. Como mucho una
// posición abierta por run: single-ticker, sin pyramiding.
type position struct {
	entryPrice float64
	entryTime  time.Time
	shares     int64
}

// SimConfig controla los costes de ejecución y los guardrails opcionales.
// Los defaults (cero, nil) reproducen la ejecución sin fricciones.
type SimConfig struct {
	// CommissionPerTrade se descuenta del cash en cada BUY y cada SELL.
	CommissionPerTrade float64
	// SlippageBps desplaza el precio de ejecución en contra: +bps al
	// comprar, -bps al vender.
	SlippageBps float64
	// Limits bloquea entradas nuevas según los guardrails configurados.
	Limits *Limits
}

// Simulator consume la serie de velas y la secuencia de señales y produce
// el trade log y la traza de equity, un punto por bar.
type Simulator struct {
	cfg SimConfig
}

// NewSimulator crea un Simulator. Una SimConfig zero-value simula sin costes.
func NewSimulator(cfg SimConfig) *Simulator {
	return &Simulator{cfg: cfg}
}

// Run ejecuta la simulación. Las señales deben venir ordenadas por timestamp
// y referirse a timestamps presentes en la serie (el generador garantiza ambas).
func (s *Simulator) Run(
	bars []domain.Bar,
	signals []domain.Signal,
	initialBalance float64,
) ([]domain.Trade, []domain.EquityPoint) {
	cash := initialBalance
	state := stateFlat
	var pos position

	trades := make([]domain.Trade, 0)
	equity := make([]domain.EquityPoint, 0, len(bars))

	next := 0 // siguiente señal pendiente

	for _, bar := range bars {
		for next < len(signals) && !signals[next].Timestamp.After(bar.Timestamp) {
			sig := signals[next]
			next++
			if !sig.Timestamp.Equal(bar.Timestamp) {
				continue
			}

			switch {
			case state == stateFlat && sig.Kind == domain.GoldenCross:
				if s.cfg.Limits != nil && !s.cfg.Limits.CanEnter(bar.Timestamp) {
					continue
				}
				price := bar.Close * (1 + s.cfg.SlippageBps/10000)
				shares := int64(math.Floor(cash / price))
				if shares == 0 {
					continue // balance insuficiente: no-op, no error
				}
				cash -= float64(shares)*price + s.cfg.CommissionPerTrade
				pos = position{entryPrice: price, entryTime: bar.Timestamp, shares: shares}
				state = stateLong
				trades = append(trades, domain.Trade{
					Date:   bar.Timestamp,
					Action: domain.ActionBuy,
					Price:  price,
				})

			case state == stateLong && sig.Kind == domain.DeathCross:
				price := bar.Close * (1 - s.cfg.SlippageBps/10000)
				cash += float64(pos.shares)*price - s.cfg.CommissionPerTrade
				pnl := (price - pos.entryPrice) / pos.entryPrice * 100
				if s.cfg.Limits != nil {
					s.cfg.Limits.RecordResult(pnl > 0)
				}
				trades = append(trades, domain.Trade{
					Date:       bar.Timestamp,
					Action:     domain.ActionSell,
					Price:      price,
					PnLPercent: &pnl,
				})
				pos = position{}
				state = stateFlat
			}
			// GoldenCross estando LONG o DeathCross estando FLAT: ignoradas.
		}

		value := cash
		if state == stateLong {
			value += float64(pos.shares) * bar.Close
		}
		equity = append(equity, domain.EquityPoint{Date: bar.Timestamp, Balance: value})
	}

	return trades, equity
}
