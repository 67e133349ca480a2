// Package indicator provides technical indicator calculations over price
// series.
//
// All functions are pure: they take a chronological slice (oldest first)
// and return values without side effects. None of them panic on short
// input; where a window cannot be formed they fall back to the neutral
// defaults documented per function, so warm-up callers stay safe.
package indicator

// Neutral fallbacks for oscillators on short or degenerate input.
const (
	NeutralRSI        = 50.0
	NeutralStochastic = 50.0
)
