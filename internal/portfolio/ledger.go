package portfolio

// ledger.go — ledger de posiciones simuladas contra el demo balance.
//
// Disciplina de concurrencia: buy/sell/force-add se aplican bajo lock de
// escritura y son todo-o-nada (si algo falla, ni el balance ni los holdings
// cambian). Los snapshots de valoración usan lock de lectura: pueden correr
// en paralelo entre sí pero siempre ven un estado consistente.
//
// Si hay un store configurado, cada mutación se persiste ANTES de hacerse
// visible en memoria: un fallo de persistencia deja el ledger como estaba.

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/adelgadom/papertrade/internal/domain"
	"github.com/adelgadom/papertrade/internal/ports"
)

// Ledger es el dueño explícito del estado compartido: holdings y demo
// balance. Se inyecta donde haga falta, nunca estado global ambiente.
type Ledger struct {
	mu       sync.RWMutex
	balance  decimal.Decimal
	holdings map[string]domain.Holding
	store    ports.LedgerStore // opcional
}

// New crea un Ledger con el balance inicial dado. Si store no es nil y
// tiene estado guardado, ese estado gana sobre el balance inicial.
func New(ctx context.Context, initialBalance decimal.Decimal, store ports.LedgerStore) (*Ledger, error) {
	if initialBalance.IsNegative() {
		return nil, fmt.Errorf("portfolio.New: negative initial balance %s", initialBalance)
	}

	l := &Ledger{
		balance:  initialBalance,
		holdings: make(map[string]domain.Holding),
		store:    store,
	}

	if store != nil {
		balance, holdings, ok, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("portfolio.New: load state: %w", err)
		}
		if ok {
			l.balance = balance
			for _, h := range holdings {
				l.holdings[h.Ticker] = h
			}
		}
	}

	return l, nil
}

// Buy compra shares acciones de ticker a price, debitando el balance.
// Si el ticker ya existe, el cost basis se promedia ponderado por cantidad.
func (l *Ledger) Buy(ctx context.Context, ticker string, shares int64, price decimal.Decimal) error {
	if shares <= 0 || !price.IsPositive() {
		return fmt.Errorf("portfolio.Buy %s: %w: shares and price must be positive", ticker, domain.ErrInvalidHolding)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := price.Mul(decimal.NewFromInt(shares))
	if cost.GreaterThan(l.balance) {
		return fmt.Errorf("portfolio.Buy %s: %w: need $%s, have $%s",
			ticker, domain.ErrInsufficientFunds, cost.StringFixed(2), l.balance.StringFixed(2))
	}

	h, exists := l.holdings[ticker]
	if exists {
		// new_basis = (old_shares·old_basis + shares·price) / (old_shares+shares)
		oldQty := decimal.NewFromInt(h.Shares)
		newQty := decimal.NewFromInt(h.Shares + shares)
		h.CostBasis = h.CostBasis.Mul(oldQty).Add(cost).Div(newQty)
		h.Shares += shares
		h.Price = price
	} else {
		h = domain.Holding{Ticker: ticker, Shares: shares, CostBasis: price, Price: price}
	}

	return l.commit(ctx, l.balance.Sub(cost), h, "")
}

// Sell vende shares acciones de ticker a price, acreditando el balance.
// Si la posición queda en cero se elimina del mapping, no queda fila-cero.
func (l *Ledger) Sell(ctx context.Context, ticker string, shares int64, price decimal.Decimal) error {
	if shares <= 0 || !price.IsPositive() {
		return fmt.Errorf("portfolio.Sell %s: %w: shares and price must be positive", ticker, domain.ErrInvalidHolding)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	h, exists := l.holdings[ticker]
	if !exists {
		return fmt.Errorf("portfolio.Sell %s: %w", ticker, domain.ErrNoSuchHolding)
	}
	if shares > h.Shares {
		return fmt.Errorf("portfolio.Sell %s: %w: want %d, have %d",
			ticker, domain.ErrInsufficientShares, shares, h.Shares)
	}

	revenue := price.Mul(decimal.NewFromInt(shares))
	h.Shares -= shares
	h.Price = price

	if h.Shares == 0 {
		return l.commit(ctx, l.balance.Add(revenue), domain.Holding{}, ticker)
	}
	return l.commit(ctx, l.balance.Add(revenue), h, "")
}

// ForceAdd crea o sobreescribe un holding sin tocar el balance. Operación
// administrativa de seed, no una acción de mercado.
func (l *Ledger) ForceAdd(ctx context.Context, ticker string, shares int64, currentPrice, costBasis decimal.Decimal) error {
	if shares <= 0 || !currentPrice.IsPositive() || !costBasis.IsPositive() {
		return fmt.Errorf("portfolio.ForceAdd %s: %w: shares, current price and cost basis must be positive",
			ticker, domain.ErrInvalidHolding)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	h := domain.Holding{Ticker: ticker, Shares: shares, CostBasis: costBasis, Price: currentPrice}
	return l.commit(ctx, l.balance, h, "")
}

// SetPrice actualiza el último precio de mercado de un holding existente.
func (l *Ledger) SetPrice(ctx context.Context, ticker string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("portfolio.SetPrice %s: %w: price must be positive", ticker, domain.ErrInvalidHolding)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	h, exists := l.holdings[ticker]
	if !exists {
		return fmt.Errorf("portfolio.SetPrice %s: %w", ticker, domain.ErrNoSuchHolding)
	}
	h.Price = price
	return l.commit(ctx, l.balance, h, "")
}

// Snapshot devuelve la valoración consistente del ledger: filas con value y
// change% computados, total y media ponderada de cambio.
func (l *Ledger) Snapshot() domain.ValuationSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := domain.ValuationSnapshot{
		DemoBalance: l.balance,
		TotalValue:  l.balance,
	}

	sumValue := decimal.Zero
	weighted := 0.0
	for _, h := range l.holdings {
		value := h.Value()
		snap.Holdings = append(snap.Holdings, domain.HoldingView{
			Ticker:    h.Ticker,
			Shares:    h.Shares,
			CostBasis: h.CostBasis,
			Price:     h.Price,
			Value:     value,
			ChangePct: h.ChangePct(),
		})
		sumValue = sumValue.Add(value)
		weighted += h.ChangePct() * value.InexactFloat64()
	}

	sort.Slice(snap.Holdings, func(i, j int) bool {
		return snap.Holdings[i].Ticker < snap.Holdings[j].Ticker
	})

	snap.TotalValue = snap.TotalValue.Add(sumValue)
	if len(snap.Holdings) > 0 && sumValue.IsPositive() {
		pct := weighted / sumValue.InexactFloat64()
		snap.TotalChangePct = &pct
	}
	return snap
}

// Balance devuelve el demo balance actual.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// commit persiste y aplica una mutación: balance nuevo más un holding a
// upsert (si tiene ticker) o a borrar (remove). Llamar con l.mu tomado en
// escritura. Si la persistencia falla, el estado en memoria no cambia.
func (l *Ledger) commit(ctx context.Context, balance decimal.Decimal, upsert domain.Holding, remove string) error {
	if balance.IsNegative() {
		// No debería alcanzarse: las precondiciones de cada operación lo impiden.
		return fmt.Errorf("portfolio.commit: %w: balance would go negative", domain.ErrInsufficientFunds)
	}

	if l.store != nil {
		next := make([]domain.Holding, 0, len(l.holdings)+1)
		for _, h := range l.holdings {
			if h.Ticker == remove || h.Ticker == upsert.Ticker {
				continue
			}
			next = append(next, h)
		}
		if upsert.Ticker != "" {
			next = append(next, upsert)
		}
		if err := l.store.Save(ctx, balance, next); err != nil {
			return fmt.Errorf("portfolio.commit: persist: %w", err)
		}
	}

	l.balance = balance
	if remove != "" {
		delete(l.holdings, remove)
	}
	if upsert.Ticker != "" {
		l.holdings[upsert.Ticker] = upsert
	}
	return nil
}
