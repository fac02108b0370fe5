package marketdata

// csv.go — proveedor de velas desde un archivo CSV local, para fixtures y
// modo dry-run. Formato: date,open,high,low,close,volume con header.

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/adelgadom/papertrade/internal/domain"
)

// CSVProvider implementa ports.BarProvider leyendo un archivo local.
// El symbol y el bar size del request se ignoran: el archivo manda.
type CSVProvider struct {
	path string
}

// NewCSVProvider crea un proveedor sobre la ruta dada.
func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{path: path}
}

// FetchBars lee el archivo completo y devuelve las velas dentro del rango
// [from, to]. Un rango zero-value devuelve todas.
func (p *CSVProvider) FetchBars(
	_ context.Context,
	_ string,
	from, to time.Time,
	_ domain.BarSize,
) ([]domain.Bar, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("marketdata.CSVProvider: open %q: %w", p.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("marketdata.CSVProvider: parse %q: %w", p.path, err)
	}
	if len(records) < 2 {
		return nil, nil
	}

	var bars []domain.Bar
	for i, rec := range records[1:] { // salta el header
		if len(rec) < 6 {
			return nil, fmt.Errorf("marketdata.CSVProvider: row %d: want 6 columns, got %d", i+2, len(rec))
		}

		ts, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			if ts, err = time.Parse(time.RFC3339, rec[0]); err != nil {
				return nil, fmt.Errorf("marketdata.CSVProvider: row %d: bad date %q", i+2, rec[0])
			}
		}
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}

		fields := make([]float64, 5)
		for j := 1; j <= 5; j++ {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("marketdata.CSVProvider: row %d col %d: %q is not a number", i+2, j+1, rec[j])
			}
			fields[j-1] = v
		}

		bars = append(bars, domain.Bar{
			Timestamp: ts,
			Open:      fields[0],
			High:      fields[1],
			Low:       fields[2],
			Close:     fields[3],
			Volume:    fields[4],
		})
	}

	return bars, nil
}
