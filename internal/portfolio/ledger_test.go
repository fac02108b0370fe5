package portfolio_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgadom/papertrade/internal/domain"
	"github.com/adelgadom/papertrade/internal/portfolio"
)

func newLedger(t *testing.T, balance float64) *portfolio.Ledger {
	t.Helper()
	l, err := portfolio.New(context.Background(), decimal.NewFromFloat(balance), nil)
	require.NoError(t, err)
	return l
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func TestLedger_BuyDebitsBalance(t *testing.T) {
	l := newLedger(t, 2000)
	ctx := context.Background()

	// 10 × $150 = $1500 ≤ $2000 → ok
	require.NoError(t, l.Buy(ctx, "AAPL", 10, dec(150)))
	assert.True(t, l.Balance().Equal(dec(500)), "balance = %s", l.Balance())

	snap := l.Snapshot()
	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, int64(10), snap.Holdings[0].Shares)
	assert.True(t, snap.Holdings[0].CostBasis.Equal(dec(150)))
}

func TestLedger_BuyInsufficientFundsLeavesStateUntouched(t *testing.T) {
	l := newLedger(t, 2000)
	ctx := context.Background()

	// 20 × $150 = $3000 > $2000
	err := l.Buy(ctx, "AAPL", 20, dec(150))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	assert.True(t, l.Balance().Equal(dec(2000)), "balance unchanged")
	assert.Empty(t, l.Snapshot().Holdings)
}

func TestLedger_BuyMergesWithWeightedCostBasis(t *testing.T) {
	l := newLedger(t, 10000)
	ctx := context.Background()

	require.NoError(t, l.Buy(ctx, "AAPL", 10, dec(100)))
	require.NoError(t, l.Buy(ctx, "AAPL", 10, dec(200)))

	snap := l.Snapshot()
	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, int64(20), snap.Holdings[0].Shares)
	// (10·100 + 10·200) / 20 = 150
	assert.True(t, snap.Holdings[0].CostBasis.Equal(dec(150)), "basis = %s", snap.Holdings[0].CostBasis)
	assert.True(t, l.Balance().Equal(dec(7000)))
}

func TestLedger_SellCreditsAndRemovesEmptyHolding(t *testing.T) {
	l := newLedger(t, 2000)
	ctx := context.Background()

	require.NoError(t, l.Buy(ctx, "AAPL", 10, dec(150)))
	require.NoError(t, l.Sell(ctx, "AAPL", 10, dec(160)))

	// Round-trip: vender todo elimina el holding, no queda fila-cero.
	assert.Empty(t, l.Snapshot().Holdings)
	assert.True(t, l.Balance().Equal(dec(2100)), "balance = %s", l.Balance())

	// Recompra posterior: holding nuevo con basis al precio nuevo.
	require.NoError(t, l.Buy(ctx, "AAPL", 5, dec(180)))
	snap := l.Snapshot()
	require.Len(t, snap.Holdings, 1)
	assert.True(t, snap.Holdings[0].CostBasis.Equal(dec(180)))
}

func TestLedger_SellErrors(t *testing.T) {
	l := newLedger(t, 2000)
	ctx := context.Background()

	err := l.Sell(ctx, "TSLA", 1, dec(200))
	assert.ErrorIs(t, err, domain.ErrNoSuchHolding)

	require.NoError(t, l.Buy(ctx, "AAPL", 5, dec(100)))
	err = l.Sell(ctx, "AAPL", 6, dec(100))
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)

	// Nada cambió tras los fallos.
	assert.True(t, l.Balance().Equal(dec(1500)))
	assert.Equal(t, int64(5), l.Snapshot().Holdings[0].Shares)
}

func TestLedger_ForceAddDoesNotTouchBalance(t *testing.T) {
	l := newLedger(t, 2000)
	ctx := context.Background()

	require.NoError(t, l.ForceAdd(ctx, "TSLA", 5, dec(250), dec(200)))

	assert.True(t, l.Balance().Equal(dec(2000)), "balance untouched")

	snap := l.Snapshot()
	require.Len(t, snap.Holdings, 1)
	h := snap.Holdings[0]
	assert.True(t, h.Value.Equal(dec(1250)), "value = %s", h.Value)
	assert.InDelta(t, 25.0, h.ChangePct, 1e-9)
}

func TestLedger_ForceAddValidatesInputs(t *testing.T) {
	l := newLedger(t, 2000)
	ctx := context.Background()

	assert.ErrorIs(t, l.ForceAdd(ctx, "TSLA", 0, dec(250), dec(200)), domain.ErrInvalidHolding)
	assert.ErrorIs(t, l.ForceAdd(ctx, "TSLA", 5, dec(0), dec(200)), domain.ErrInvalidHolding)
	assert.ErrorIs(t, l.ForceAdd(ctx, "TSLA", 5, dec(250), dec(-1)), domain.ErrInvalidHolding)
	assert.Empty(t, l.Snapshot().Holdings)
}

func TestLedger_SnapshotTotalsAndWeightedChange(t *testing.T) {
	l := newLedger(t, 1000)
	ctx := context.Background()

	// AAPL: valor 1100, +10% | TSLA: valor 400, -20%
	require.NoError(t, l.ForceAdd(ctx, "AAPL", 10, dec(110), dec(100)))
	require.NoError(t, l.ForceAdd(ctx, "TSLA", 4, dec(100), dec(125)))

	snap := l.Snapshot()
	assert.True(t, snap.TotalValue.Equal(dec(2500)), "total = %s", snap.TotalValue)

	require.NotNil(t, snap.TotalChangePct)
	// (10·1100 + (−20)·400) / 1500 = 2
	assert.InDelta(t, 2.0, *snap.TotalChangePct, 1e-9)
}

func TestLedger_SnapshotEmptyIsNA(t *testing.T) {
	l := newLedger(t, 1000)
	snap := l.Snapshot()

	assert.Empty(t, snap.Holdings)
	assert.Nil(t, snap.TotalChangePct, "sin holdings el cambio total es N/A, no 0")
	assert.True(t, snap.TotalValue.Equal(dec(1000)))
}

func TestLedger_BalanceNeverNegative(t *testing.T) {
	l := newLedger(t, 100)
	ctx := context.Background()

	ops := []func() error{
		func() error { return l.Buy(ctx, "A", 2, dec(30)) },   // ok → 40
		func() error { return l.Buy(ctx, "A", 5, dec(30)) },   // falla
		func() error { return l.Sell(ctx, "B", 1, dec(10)) },  // falla
		func() error { return l.ForceAdd(ctx, "C", 1, dec(5), dec(5)) }, // ok
		func() error { return l.Sell(ctx, "A", 1, dec(25)) },  // ok → 65
		func() error { return l.Buy(ctx, "C", 100, dec(10)) }, // falla
	}

	for i, op := range ops {
		_ = op()
		assert.False(t, l.Balance().IsNegative(), "op %d left balance negative", i)
	}
	assert.True(t, l.Balance().Equal(dec(65)), "balance = %s", l.Balance())
}

func TestLedger_ConcurrentMutationsSerialize(t *testing.T) {
	l := newLedger(t, 1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Buy(ctx, "AAPL", 1, dec(10)))
			_ = l.Snapshot() // lecturas concurrentes con las mutaciones
		}()
	}
	wg.Wait()

	snap := l.Snapshot()
	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, int64(10), snap.Holdings[0].Shares)
	assert.True(t, l.Balance().Equal(dec(900)), "balance = %s", l.Balance())
}
