package ports

import (
	"context"

	"github.com/adelgadom/papertrade/internal/domain"
)

// Notifier presenta los resultados al usuario. La implementación de consola
// imprime tablas formateadas.
type Notifier interface {
	// NotifyBacktest muestra el trade log y las métricas de un run.
	NotifyBacktest(ctx context.Context, result domain.BacktestResult) error

	// NotifySnapshot muestra la valoración actual del portfolio.
	NotifySnapshot(ctx context.Context, snap domain.ValuationSnapshot) error
}
