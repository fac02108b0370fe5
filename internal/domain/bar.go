package domain

import (
	"fmt"
	"time"
)

// BarSize es la granularidad de las velas soportada por el proveedor de datos.
type BarSize string

const (
	BarSize1Hour  BarSize = "1 hour"
	BarSize1Day   BarSize = "1 day"
	BarSize1Week  BarSize = "1 week"
	BarSize1Month BarSize = "1 month"
)

// Valid devuelve true si el BarSize pertenece al set soportado.
func (b BarSize) Valid() bool {
	switch b {
	case BarSize1Hour, BarSize1Day, BarSize1Week, BarSize1Month:
		return true
	}
	return false
}

// Intraday devuelve true si la granularidad es menor a un día de mercado.
func (b BarSize) Intraday() bool {
	return b == BarSize1Hour
}

// Bar is one OHLCV candle for a symbol at a given period.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// ValidateSeries comprueba los invariantes de una serie de velas:
// timestamps estrictamente crecientes (sin duplicados) y campos OHLC
// presentes. Los gaps (sesiones sin datos) están permitidos.
func ValidateSeries(bars []Bar) error {
	for i, b := range bars {
		if b.Timestamp.IsZero() {
			return fmt.Errorf("domain.ValidateSeries: bar %d: %w: missing timestamp", i, ErrMalformedBarSeries)
		}
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return fmt.Errorf("domain.ValidateSeries: bar %d at %s: %w: missing OHLC fields",
				i, b.Timestamp.Format("2006-01-02"), ErrMalformedBarSeries)
		}
		if i > 0 && !bars[i-1].Timestamp.Before(b.Timestamp) {
			return fmt.Errorf("domain.ValidateSeries: bar %d at %s: %w: non-monotonic timestamp",
				i, b.Timestamp.Format("2006-01-02"), ErrMalformedBarSeries)
		}
	}
	return nil
}
