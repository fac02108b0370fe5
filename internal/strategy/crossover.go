package strategy

// crossover.go — generador de señales del cruce de EMAs 9/20/200.
//
// Mantiene tres EMAs incrementales y el "régimen" (signo de fast − mid) del
// bar anterior. Un flip de régimen emite exactamente una señal en el bar
// actual. La EMA lenta actúa solo como filtro de tendencia, a través de una
// política intercambiable (ver TrendFilter).

import (
	"fmt"

	"github.com/adelgadom/papertrade/internal/domain"
)

// Períodos por defecto de la estrategia.
const (
	DefaultFastPeriod = 9
	DefaultMidPeriod  = 20
	DefaultSlowPeriod = 200
)

// FilterInput es el estado del indicador en el bar que generó la señal.
type FilterInput struct {
	Close float64
	Fast  float64
	Mid   float64
	Slow  float64
}

// TrendFilter decide si una señal se emite o se suprime. La regla exacta de
// gating contra la tendencia de largo plazo no está fijada; por eso es una
// política inyectable y no una condición cableada en el generador.
type TrendFilter func(in FilterInput, kind domain.SignalKind) bool

// SuppressBelowSlowEMA es la política por defecto: suprime GoldenCross
// mientras el precio esté por debajo de la EMA lenta (sin entradas largas
// contra la tendencia bajista de largo plazo). DeathCross siempre pasa.
func SuppressBelowSlowEMA(in FilterInput, kind domain.SignalKind) bool {
	if kind == domain.GoldenCross && in.Close < in.Slow {
		return false
	}
	return true
}

// RequireMidAboveSlow es la variante alternativa: exige que la EMA media
// esté por encima de la lenta para entrar largo.
func RequireMidAboveSlow(in FilterInput, kind domain.SignalKind) bool {
	if kind == domain.GoldenCross && in.Mid <= in.Slow {
		return false
	}
	return true
}

// NoTrendFilter emite todas las señales sin gating.
func NoTrendFilter(FilterInput, domain.SignalKind) bool {
	return true
}

// Generator produce la secuencia de señales de cruce para una serie de velas.
// Determinista y reiniciable: misma serie → mismas señales.
type Generator struct {
	fastPeriod int
	midPeriod  int
	slowPeriod int
	filter     TrendFilter
}

// NewGenerator crea un Generator con los períodos dados. Si filter es nil,
// usa SuppressBelowSlowEMA.
func NewGenerator(fast, mid, slow int, filter TrendFilter) *Generator {
	if filter == nil {
		filter = SuppressBelowSlowEMA
	}
	return &Generator{
		fastPeriod: fast,
		midPeriod:  mid,
		slowPeriod: slow,
		filter:     filter,
	}
}

// NewDefaultGenerator crea el generador 9/20/200 con el filtro por defecto.
func NewDefaultGenerator() *Generator {
	return NewGenerator(DefaultFastPeriod, DefaultMidPeriod, DefaultSlowPeriod, nil)
}

// Periods devuelve los períodos fast/mid/slow del generador.
func (g *Generator) Periods() (fast, mid, slow int) {
	return g.fastPeriod, g.midPeriod, g.slowPeriod
}

// Generate recorre la serie y devuelve las señales ordenadas. Falla con
// ErrInsufficientData si la serie no alcanza a sembrar la EMA lenta.
func (g *Generator) Generate(bars []domain.Bar) ([]domain.Signal, error) {
	if len(bars) < g.slowPeriod {
		return nil, fmt.Errorf("strategy.Generate: %w: need %d bars to seed the %d-period EMA, have %d",
			domain.ErrInsufficientData, g.slowPeriod, g.slowPeriod, len(bars))
	}

	fast := NewEMA(g.fastPeriod)
	mid := NewEMA(g.midPeriod)
	slow := NewEMA(g.slowPeriod)

	var signals []domain.Signal
	prevDiff := 0.0
	havePrev := false

	for _, bar := range bars {
		fast.Update(bar.Close)
		mid.Update(bar.Close)
		slow.Update(bar.Close)

		if !fast.Ready() || !mid.Ready() {
			continue
		}

		diff := fast.Value() - mid.Value()
		if !havePrev {
			// Primer bar con fast y mid sembradas: fija el régimen inicial.
			prevDiff = diff
			havePrev = true
			continue
		}

		var kind domain.SignalKind
		switch {
		case prevDiff < 0 && diff >= 0:
			kind = domain.GoldenCross
		case prevDiff > 0 && diff <= 0:
			kind = domain.DeathCross
		}
		prevDiff = diff

		// Durante el warm-up de la EMA lenta ninguna señal puede dispararse.
		if kind == "" || !slow.Ready() {
			continue
		}

		in := FilterInput{
			Close: bar.Close,
			Fast:  fast.Value(),
			Mid:   mid.Value(),
			Slow:  slow.Value(),
		}
		if !g.filter(in, kind) {
			continue
		}

		signals = append(signals, domain.Signal{Timestamp: bar.Timestamp, Kind: kind})
	}

	return signals, nil
}
