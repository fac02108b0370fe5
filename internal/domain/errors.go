package domain

import "errors"

// Errores del core. Se envuelven con fmt.Errorf("...: %w") añadiendo el
// detalle de la precondición que falló; los callers discriminan con errors.Is.
var (
	// ErrInsufficientData: la serie de velas es demasiado corta para
	// sembrar los indicadores. No es fatal — "no hay backtest posible".
	ErrInsufficientData = errors.New("insufficient data")

	// ErrMalformedBarSeries: timestamps no monótonos o campos OHLCV ausentes.
	ErrMalformedBarSeries = errors.New("malformed bar series")

	// Errores del ledger. Cada uno aborta solo la operación que lo produce;
	// balance y holdings quedan intactos.
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNoSuchHolding      = errors.New("no such holding")
	ErrInvalidHolding     = errors.New("invalid holding")
)
