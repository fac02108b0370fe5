package domain

import "time"

// SignalKind identifies the crossover direction.
type SignalKind string

const (
	// GoldenCross: the fast EMA crossed above the mid EMA (long entry).
	GoldenCross SignalKind = "GOLDEN_CROSS"
	// DeathCross: the fast EMA crossed below the mid EMA (exit).
	DeathCross SignalKind = "DEATH_CROSS"
)

// Signal is one crossover event emitted by the signal generator.
// At most one signal fires per regime flip — no retriggering while the
// averages stay on the same side.
type Signal struct {
	Timestamp time.Time
	Kind      SignalKind
}
