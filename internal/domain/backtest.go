package domain

import "time"

// TradeAction es el lado de una operación simulada.
type TradeAction string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"
)

// Trade is one executed simulated trade in a backtest run.
type Trade struct {
	Date   time.Time
	Action TradeAction
	Price  float64
	// PnLPercent se rellena solo en SELL, contra el precio de entrada del
	// BUY emparejado. nil en los BUY (la tabla del dashboard muestra "-").
	PnLPercent *float64
}

// EquityPoint is the mark-to-market account value at one bar:
// cash plus the open position valued at that bar's close.
type EquityPoint struct {
	Date    time.Time
	Balance float64
}

// PNLPoint is one point of the charted PNL series: equity expressed as
// percent change from the initial demo balance.
type PNLPoint struct {
	Date  time.Time
	Value float64
}

// OverlayPoint is one point of a chartable indicator series. Series start
// after the indicator's warm-up, never with placeholder values.
type OverlayPoint struct {
	Date  time.Time
	Value float64
}

// Metrics son las estadísticas derivadas de un run. Se calculan una vez al
// final y no se mutan después.
type Metrics struct {
	TotalReturnPct float64
	MaxDrawdownPct float64 // positivo: mayor caída pico-valle observada
	SharpeRatio    float64
	FinalBalance   float64

	// Rollups del trade log (solo round-trips cerrados, filas SELL).
	TradeCount   int
	WinRate      float64
	ProfitFactor float64
}

// BacktestResult is everything one backtest run produces: the trade log,
// the chartable series and the derived metrics. Transient — recomputed per
// request, never persisted.
type BacktestResult struct {
	RunID          string
	Symbol         string
	BarSize        BarSize
	InitialBalance float64

	Bars     []Bar // serie OHLCV de entrada, devuelta para el chart
	Trades   []Trade
	Equity   []EquityPoint
	PNL      []PNLPoint
	Overlays map[string][]OverlayPoint // "ema9", "ema20", "ema200", opcionales "rsi14", "atr14"
	Metrics  Metrics
}
