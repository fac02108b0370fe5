package strategy

// indicators.go — series de indicadores para los overlays del chart.
// Solo presentación: ninguna de estas series participa en las decisiones
// de trading. Cada serie empieza después de su warm-up, sin placeholders.

import "github.com/adelgadom/papertrade/internal/domain"

// EMASeries devuelve la serie EMA del período dado, un punto por bar a
// partir del seed.
func EMASeries(bars []domain.Bar, period int) []domain.OverlayPoint {
	ema := NewEMA(period)
	var out []domain.OverlayPoint
	for _, bar := range bars {
		if ema.Update(bar.Close) {
			out = append(out, domain.OverlayPoint{Date: bar.Timestamp, Value: ema.Value()})
		}
	}
	return out
}

// RSISeries devuelve el RSI de Wilder del período dado (0–100).
func RSISeries(bars []domain.Bar, period int) []domain.OverlayPoint {
	if len(bars) <= period {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := bars[i].Close - bars[i-1].Close
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss += -delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := []domain.OverlayPoint{{Date: bars[period].Timestamp, Value: rsiValue(avgGain, avgLoss)}}

	for i := period + 1; i < len(bars); i++ {
		delta := bars[i].Close - bars[i-1].Close
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out = append(out, domain.OverlayPoint{Date: bars[i].Timestamp, Value: rsiValue(avgGain, avgLoss)})
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ATRSeries devuelve el Average True Range (suavizado de Wilder) del período dado.
func ATRSeries(bars []domain.Bar, period int) []domain.OverlayPoint {
	if len(bars) <= period {
		return nil
	}

	var sum float64
	for i := 1; i <= period; i++ {
		sum += trueRange(bars[i], bars[i-1])
	}
	atr := sum / float64(period)

	out := []domain.OverlayPoint{{Date: bars[period].Timestamp, Value: atr}}

	for i := period + 1; i < len(bars); i++ {
		atr = (atr*float64(period-1) + trueRange(bars[i], bars[i-1])) / float64(period)
		out = append(out, domain.OverlayPoint{Date: bars[i].Timestamp, Value: atr})
	}
	return out
}

func trueRange(cur, prev domain.Bar) float64 {
	tr := cur.High - cur.Low
	if hc := abs(cur.High - prev.Close); hc > tr {
		tr = hc
	}
	if lc := abs(cur.Low - prev.Close); lc > tr {
		tr = lc
	}
	return tr
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
