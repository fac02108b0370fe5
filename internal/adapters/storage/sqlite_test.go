package storage_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgadom/papertrade/internal/adapters/storage"
	"github.com/adelgadom/papertrade/internal/domain"
)

func makeHolding(ticker string, shares int64, basis, price float64) domain.Holding {
	return domain.Holding{
		Ticker:    ticker,
		Shares:    shares,
		CostBasis: decimal.NewFromFloat(basis),
		Price:     decimal.NewFromFloat(price),
	}
}

func TestSQLiteStore_FirstLoadHasNoState(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, holdings, ok, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, holdings)
}

func TestSQLiteStore_SaveAndLoadRoundTrip(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	balance := decimal.NewFromFloat(8234.56)
	holdings := []domain.Holding{
		makeHolding("AAPL", 10, 150.25, 161.10),
		makeHolding("TSLA", 5, 200, 250),
	}

	require.NoError(t, db.Save(ctx, balance, holdings))

	gotBalance, gotHoldings, ok, err := db.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, gotBalance.Equal(balance), "balance = %s", gotBalance)
	require.Len(t, gotHoldings, 2)

	// Ordenados por ticker
	assert.Equal(t, "AAPL", gotHoldings[0].Ticker)
	assert.Equal(t, int64(10), gotHoldings[0].Shares)
	assert.True(t, gotHoldings[0].CostBasis.Equal(decimal.NewFromFloat(150.25)))
	assert.True(t, gotHoldings[1].Price.Equal(decimal.NewFromFloat(250)))
}

func TestSQLiteStore_SaveReplacesWholeState(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Save(ctx, decimal.NewFromFloat(1000), []domain.Holding{
		makeHolding("AAPL", 10, 100, 100),
		makeHolding("TSLA", 5, 200, 200),
	}))

	// El segundo Save con menos holdings elimina los que ya no están.
	require.NoError(t, db.Save(ctx, decimal.NewFromFloat(2000), []domain.Holding{
		makeHolding("MSFT", 3, 300, 310),
	}))

	balance, holdings, ok, err := db.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, balance.Equal(decimal.NewFromFloat(2000)))
	require.Len(t, holdings, 1)
	assert.Equal(t, "MSFT", holdings[0].Ticker)
}

func TestSQLiteStore_EmptyHoldingsPersistBalance(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Save(ctx, decimal.NewFromFloat(500), nil))

	balance, holdings, ok, err := db.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, balance.Equal(decimal.NewFromFloat(500)))
	assert.Empty(t, holdings)
}
