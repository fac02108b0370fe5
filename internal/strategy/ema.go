package strategy

// EMA es una media móvil exponencial incremental. Se siembra con la media
// simple de los primeros N cierres; hasta entonces Ready() es false y
// Value() no está definido.
type EMA struct {
	period int
	k      float64
	sum    float64 // acumulador del seed SMA
	count  int
	value  float64
}

// NewEMA crea una EMA del período dado con el smoothing estándar k = 2/(N+1).
func NewEMA(period int) *EMA {
	return &EMA{
		period: period,
		k:      2.0 / float64(period+1),
	}
}

// Update procesa un cierre más y devuelve true cuando la EMA está sembrada.
func (e *EMA) Update(close float64) bool {
	e.count++
	if e.count < e.period {
		e.sum += close
		return false
	}
	if e.count == e.period {
		e.sum += close
		e.value = e.sum / float64(e.period)
		return true
	}
	e.value = close*e.k + e.value*(1-e.k)
	return true
}

// Ready devuelve true si ya se observaron al menos N cierres.
func (e *EMA) Ready() bool {
	return e.count >= e.period
}

// Value devuelve el valor actual. Solo válido cuando Ready() es true.
func (e *EMA) Value() float64 {
	return e.value
}
