package domain

import "github.com/shopspring/decimal"

// Holding es una posición del ledger: cantidad, coste medio de entrada y
// último precio de mercado (suministrado externamente). Todo el dinero del
// ledger usa decimal para evitar drift acumulado en el cost basis.
type Holding struct {
	Ticker    string
	Shares    int64
	CostBasis decimal.Decimal // precio medio de entrada, ponderado por cantidad
	Price     decimal.Decimal // último precio de mercado
}

// Value devuelve el valor de mercado de la posición (shares × price).
func (h Holding) Value() decimal.Decimal {
	return h.Price.Mul(decimal.NewFromInt(h.Shares))
}

// ChangePct devuelve el cambio porcentual no realizado contra el cost basis.
func (h Holding) ChangePct() float64 {
	if h.CostBasis.IsZero() {
		return 0
	}
	return h.Price.Sub(h.CostBasis).Div(h.CostBasis).InexactFloat64() * 100
}

// HoldingView is one row of a valuation snapshot, with the derived fields
// already computed.
type HoldingView struct {
	Ticker    string
	Shares    int64
	CostBasis decimal.Decimal
	Price     decimal.Decimal
	Value     decimal.Decimal
	ChangePct float64
}

// ValuationSnapshot is a consistent point-in-time view of the ledger.
type ValuationSnapshot struct {
	Holdings    []HoldingView
	DemoBalance decimal.Decimal
	// TotalValue = demo_balance + Σ holding.Value.
	TotalValue decimal.Decimal
	// TotalChangePct es la media de los ChangePct ponderada por valor.
	// nil cuando no hay holdings — "N/A", no un cero que sugeriría
	// "sin cambio" en vez de "sin datos".
	TotalChangePct *float64
}
