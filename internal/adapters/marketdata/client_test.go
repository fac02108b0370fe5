package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelgadom/papertrade/internal/domain"
)

func TestClient_FetchBarsMapsAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/candles", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))

		// Desordenado a propósito: el cliente debe ordenar por timestamp.
		fmt.Fprint(w, `[
			{"t": 1704326400, "o": 104, "h": 108, "l": 103, "c": 107, "v": 98000},
			{"t": 1704240000, "o": 100, "h": 105, "l": 99, "c": 104, "v": 120000}
		]`)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	bars, err := c.FetchBars(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		domain.BarSize1Day)

	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.True(t, bars[0].Timestamp.Before(bars[1].Timestamp))
	assert.Equal(t, 104.0, bars[0].Close)
	assert.Equal(t, 107.0, bars[1].Close)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `[{"t": 1704240000, "o": 100, "h": 105, "l": 99, "c": 104, "v": 120000}]`)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	bars, err := c.FetchBars(context.Background(), "AAPL", time.Time{}, time.Time{}, domain.BarSize1Day)

	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, 2, calls)
}

func TestClient_ClientErrorDoesNotRetry(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "unknown symbol", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.FetchBars(context.Background(), "NOPE", time.Time{}, time.Time{}, domain.BarSize1Day)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestClient_UnsupportedBarSize(t *testing.T) {
	c := NewClient("http://localhost:1")
	_, err := c.FetchBars(context.Background(), "AAPL", time.Time{}, time.Time{}, "3 days")
	assert.Error(t, err)
}
