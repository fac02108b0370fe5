package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/adelgadom/papertrade/internal/domain"
)

// LedgerStore persiste el estado del ledger (balance + holdings) entre
// procesos. El ledger decide las operaciones y los invariantes; el store
// solo decide el medio.
type LedgerStore interface {
	// Load devuelve el estado guardado. ok es false si no hay estado
	// previo (primer arranque).
	Load(ctx context.Context) (balance decimal.Decimal, holdings []domain.Holding, ok bool, err error)

	// Save persiste el estado completo de forma atómica: o se guarda
	// todo (balance y holdings) o nada.
	Save(ctx context.Context, balance decimal.Decimal, holdings []domain.Holding) error

	// Close cierra la conexión limpiamente.
	Close() error
}
