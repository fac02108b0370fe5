package ports

import (
	"context"
	"time"

	"github.com/adelgadom/papertrade/internal/domain"
)

// BarProvider obtiene la serie OHLCV histórica de un símbolo.
type BarProvider interface {
	// FetchBars devuelve las velas de (symbol, from, to, size) ordenadas
	// por timestamp ascendente.
	FetchBars(ctx context.Context, symbol string, from, to time.Time, size domain.BarSize) ([]domain.Bar, error)
}
