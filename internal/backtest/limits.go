package backtest

// limits.go — guardrails opcionales sobre las entradas del simulador.
// Desactivados por defecto: con LimitsConfig zero-value el simulador
// reproduce exactamente la ejecución sin restricciones.

import (
	"sync"
	"time"
)

// LimitsConfig controla los guardrails de entrada.
type LimitsConfig struct {
	// MaxConsecutiveLosses corta las entradas nuevas tras N round-trips
	// perdedores seguidos. 0 desactiva el corte.
	MaxConsecutiveLosses int
	// NoTradeWindow bloquea entradas a menos de esta distancia de la
	// apertura (9:30) o el cierre (16:00) de la sesión. Solo aplica a
	// granularidades intradía; 0 desactiva la ventana.
	NoTradeWindow time.Duration
	// Intraday marca si la serie es intradía (la ventana de sesión solo
	// tiene sentido entonces).
	Intraday bool
}

// Limits lleva la cuenta de resultados y decide si se permite una entrada.
type Limits struct {
	cfg    LimitsConfig
	mu     sync.Mutex
	losses int
}

// NewLimits crea los guardrails con la configuración dada.
func NewLimits(cfg LimitsConfig) *Limits {
	return &Limits{cfg: cfg}
}

// CanEnter devuelve true si los guardrails permiten abrir posición en ts.
func (l *Limits) CanEnter(ts time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg.MaxConsecutiveLosses > 0 && l.losses >= l.cfg.MaxConsecutiveLosses {
		return false
	}

	if l.cfg.Intraday && l.cfg.NoTradeWindow > 0 {
		open := time.Date(ts.Year(), ts.Month(), ts.Day(), 9, 30, 0, 0, ts.Location())
		close := time.Date(ts.Year(), ts.Month(), ts.Day(), 16, 0, 0, 0, ts.Location())
		if ts.Before(open.Add(l.cfg.NoTradeWindow)) || ts.After(close.Add(-l.cfg.NoTradeWindow)) {
			return false
		}
	}

	return true
}

// RecordResult registra el resultado de un round-trip cerrado. Una victoria
// resetea la racha de pérdidas.
func (l *Limits) RecordResult(win bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if win {
		l.losses = 0
	} else {
		l.losses++
	}
}
