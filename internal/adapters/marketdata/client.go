package marketdata

// client.go — cliente HTTP del proveedor de velas, con rate limiting y
// retries. Implementa ports.BarProvider.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/adelgadom/papertrade/internal/domain"
)

const (
	defaultBaseURL = "https://marketdata.papertrade.dev"

	// El proveedor documenta 120 req/10s; nos quedamos al 60%.
	candlesRatePerSec = 7

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// intervalos del API por bar size
var apiIntervals = map[domain.BarSize]string{
	domain.BarSize1Hour:  "1h",
	domain.BarSize1Day:   "1d",
	domain.BarSize1Week:  "1w",
	domain.BarSize1Month: "1mo",
}

// Client es el cliente HTTP del proveedor de datos de mercado.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient crea un Client. Si baseURL está vacío usa el URL de producción.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		limiter: rate.NewLimiter(candlesRatePerSec, 5),
	}
}

// candleRow es la fila del JSON del proveedor.
type candleRow struct {
	Timestamp int64   `json:"t"` // epoch segundos UTC
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// FetchBars descarga la serie OHLCV de (symbol, from, to, size), ordenada
// por timestamp ascendente.
func (c *Client) FetchBars(
	ctx context.Context,
	symbol string,
	from, to time.Time,
	size domain.BarSize,
) ([]domain.Bar, error) {
	interval, ok := apiIntervals[size]
	if !ok {
		return nil, fmt.Errorf("marketdata.FetchBars: unsupported bar size %q", size)
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("from", fmt.Sprintf("%d", from.Unix()))
	q.Set("to", fmt.Sprintf("%d", to.Unix()))
	endpoint := fmt.Sprintf("%s/api/v1/candles?%s", c.baseURL, q.Encode())

	var rows []candleRow
	if err := c.get(ctx, endpoint, &rows); err != nil {
		return nil, fmt.Errorf("marketdata.FetchBars %s: %w", symbol, err)
	}

	bars := make([]domain.Bar, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, domain.Bar{
			Timestamp: time.Unix(r.Timestamp, 0).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}

	// El proveedor no garantiza orden estable entre páginas.
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})

	slog.Debug("fetched bars",
		"symbol", symbol,
		"interval", interval,
		"count", len(bars),
	)
	return bars, nil
}

// get hace un GET JSON con rate limiting y retries.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("status %d after %d retries", resp.StatusCode, maxRetries)
			}
			slog.Warn("retrying market data request", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
